package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"career-assess/internal/domain"
)

// SessionClaimer reserva (usuario, instrumento) mientras dure una sesion.
// Es best-effort: el gatekeeper y el UNIQUE de la tabla siguen siendo la autoridad.
type SessionClaimer interface {
	Claim(ctx context.Context, userID string, instrument domain.Instrument, sessionID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, userID string, instrument domain.Instrument, sessionID string) error
}

func claimKey(userID string, instrument domain.Instrument) string {
	return strings.TrimSpace(userID) + ":" + instrument.String()
}

type memoryClaim struct {
	sessionID string
	expires   time.Time
}

type memorySessionClaimer struct {
	mu    sync.Mutex
	items map[string]memoryClaim
	now   func() time.Time
}

func NewMemorySessionClaimer() SessionClaimer {
	return &memorySessionClaimer{
		items: make(map[string]memoryClaim),
		now:   time.Now,
	}
}

func (c *memorySessionClaimer) Claim(_ context.Context, userID string, instrument domain.Instrument, sessionID string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := claimKey(userID, instrument)
	now := c.now().UTC()
	if existing, ok := c.items[key]; ok && now.Before(existing.expires) {
		return existing.sessionID == sessionID, nil
	}
	c.items[key] = memoryClaim{sessionID: sessionID, expires: now.Add(ttl)}
	return true, nil
}

func (c *memorySessionClaimer) Release(_ context.Context, userID string, instrument domain.Instrument, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := claimKey(userID, instrument)
	if existing, ok := c.items[key]; ok && existing.sessionID == sessionID {
		delete(c.items, key)
	}
	return nil
}

// Solo borra la clave si sigue perteneciendo a la sesion que la reservo.
const redisReleaseClaimScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

type redisClaimClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisSessionClaimer struct {
	client redisClaimClient
	prefix string
	logger *zap.Logger
}

func NewRedisSessionClaimer(client *redis.Client, logger *zap.Logger) SessionClaimer {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisSessionClaimer{
		client: client,
		prefix: "assess:claim:",
		logger: logger,
	}
}

// Claim falla abierto: si Redis no responde la sesion puede iniciar igual.
func (c *redisSessionClaimer) Claim(ctx context.Context, userID string, instrument domain.Instrument, sessionID string, ttl time.Duration) (bool, error) {
	if c == nil || c.client == nil {
		return true, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	ok, err := c.client.SetNX(ctx, c.prefix+claimKey(userID, instrument), sessionID, ttl).Result()
	if err != nil {
		c.log().Warn("session claim unavailable, failing open",
			zap.String("user_id", userID),
			zap.String("instrument", instrument.String()),
			zap.Error(err),
		)
		return true, nil
	}
	return ok, nil
}

func (c *redisSessionClaimer) Release(ctx context.Context, userID string, instrument domain.Instrument, sessionID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return c.client.Eval(ctx, redisReleaseClaimScript, []string{c.prefix + claimKey(userID, instrument)}, sessionID).Err()
}

func (c *redisSessionClaimer) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}
