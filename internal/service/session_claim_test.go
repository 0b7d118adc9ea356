package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"career-assess/internal/domain"
)

type mockClaimClient struct {
	setKey     string
	setValue   interface{}
	setTTL     time.Duration
	setResult  bool
	setErr     error
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	evalErr    error
}

func (m *mockClaimClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.setKey = key
	m.setValue = value
	m.setTTL = expiration
	cmd := redis.NewBoolCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal(m.setResult)
	return cmd
}

func (m *mockClaimClient) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.evalErr != nil {
		cmd.SetErr(m.evalErr)
		return cmd
	}
	cmd.SetVal(int64(1))
	return cmd
}

func TestRedisSessionClaimer(t *testing.T) {
	ctx := context.Background()

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var c *redisSessionClaimer
		ok, err := c.Claim(ctx, "u1", domain.InstrumentMBTI, "s1", time.Minute)
		if err != nil || !ok {
			t.Fatalf("expected fail-open for nil claimer, got %v %v", ok, err)
		}
	})

	t.Run("claim sets key with ttl", func(t *testing.T) {
		mock := &mockClaimClient{setResult: true}
		c := &redisSessionClaimer{client: mock, prefix: "assess:claim:", logger: zap.NewNop()}
		ok, err := c.Claim(ctx, " u1 ", domain.InstrumentPAPI, "s1", 6*time.Minute)
		if err != nil || !ok {
			t.Fatalf("expected claim, got %v %v", ok, err)
		}
		if mock.setKey != "assess:claim:u1:papi" {
			t.Fatalf("unexpected key %q", mock.setKey)
		}
		if mock.setValue != "s1" || mock.setTTL != 6*time.Minute {
			t.Fatalf("unexpected value/ttl: %v %v", mock.setValue, mock.setTTL)
		}
	})

	t.Run("existing key denies", func(t *testing.T) {
		c := &redisSessionClaimer{client: &mockClaimClient{setResult: false}, prefix: "assess:claim:", logger: zap.NewNop()}
		ok, err := c.Claim(ctx, "u1", domain.InstrumentPAPI, "s2", time.Minute)
		if err != nil || ok {
			t.Fatalf("expected deny, got %v %v", ok, err)
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		c := &redisSessionClaimer{client: &mockClaimClient{setErr: errors.New("redis down")}, prefix: "assess:claim:", logger: zap.NewNop()}
		ok, err := c.Claim(ctx, "u1", domain.InstrumentPAPI, "s1", time.Minute)
		if err != nil || !ok {
			t.Fatalf("expected fail-open on redis errors, got %v %v", ok, err)
		}
	})

	t.Run("redis error without logger still fails open", func(t *testing.T) {
		c := &redisSessionClaimer{client: &mockClaimClient{setErr: errors.New("redis down")}, prefix: "assess:claim:"}
		ok, err := c.Claim(ctx, "u1", domain.InstrumentPAPI, "s1", time.Minute)
		if err != nil || !ok {
			t.Fatalf("expected fail-open on redis errors, got %v %v", ok, err)
		}
	})

	t.Run("release compares owner", func(t *testing.T) {
		mock := &mockClaimClient{}
		c := &redisSessionClaimer{client: mock, prefix: "assess:claim:", logger: zap.NewNop()}
		if err := c.Release(ctx, "u1", domain.InstrumentMBTI, "s1"); err != nil {
			t.Fatalf("release: %v", err)
		}
		if mock.lastScript != redisReleaseClaimScript {
			t.Fatalf("expected release script")
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "assess:claim:u1:mbti" {
			t.Fatalf("unexpected keys %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != "s1" {
			t.Fatalf("expected owner arg, got %+v", mock.lastArgs)
		}
	})
}

func TestMemorySessionClaimer(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	c := &memorySessionClaimer{items: make(map[string]memoryClaim), now: func() time.Time { return now }}

	if ok, _ := c.Claim(ctx, "u1", domain.InstrumentMBTI, "s1", time.Minute); !ok {
		t.Fatalf("expected first claim to succeed")
	}
	if ok, _ := c.Claim(ctx, "u1", domain.InstrumentMBTI, "s2", time.Minute); ok {
		t.Fatalf("expected second claim to be denied")
	}
	if ok, _ := c.Claim(ctx, "u1", domain.InstrumentPAPI, "s3", time.Minute); !ok {
		t.Fatalf("other instrument must not be blocked")
	}

	// liberar con otra sesion no borra la reserva
	_ = c.Release(ctx, "u1", domain.InstrumentMBTI, "s2")
	if ok, _ := c.Claim(ctx, "u1", domain.InstrumentMBTI, "s2", time.Minute); ok {
		t.Fatalf("foreign release must not free the claim")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := c.Claim(ctx, "u1", domain.InstrumentMBTI, "s2", time.Minute); !ok {
		t.Fatalf("expired claim should be replaced")
	}
}
