package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"career-assess/internal/domain"
)

type registryFixture struct {
	manager   *SessionManager
	sink      *mockSink
	claimer   *memorySessionClaimer
	scheduler *manualScheduler
	now       time.Time
}

func newRegistryFixture(questions int) *registryFixture {
	f := &registryFixture{
		sink:      &mockSink{},
		scheduler: &manualScheduler{},
		now:       time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	f.claimer = &memorySessionClaimer{items: make(map[string]memoryClaim), now: func() time.Time { return f.now }}
	f.manager = NewSessionManager(
		&mockGate{decision: StartAllowed},
		&mockBank{questions: papiQuestions(questions)},
		f.sink,
		f.claimer,
		SessionManagerConfig{
			Session: SessionConfig{
				QuestionSeconds: 15,
				Scheduler:       f.scheduler,
				Now:             func() time.Time { return f.now },
			},
			ClaimTTL: func(questions int) time.Duration { return time.Duration(questions) * time.Minute },
			IdleTTL:  10 * time.Minute,
		},
		nil,
	)
	return f
}

func TestSessionManager_OneSessionPerUserAndInstrument(t *testing.T) {
	f := newRegistryFixture(2)
	ctx := context.Background()

	sess, err := f.manager.Start(ctx, "u1", domain.InstrumentPAPI)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.manager.Start(ctx, "u1", domain.InstrumentPAPI); !errors.Is(err, ErrSessionInProgress) {
		t.Fatalf("expected ErrSessionInProgress, got %v", err)
	}
	if _, err := f.manager.Start(ctx, "u2", domain.InstrumentPAPI); err != nil {
		t.Fatalf("other user must be able to start: %v", err)
	}

	got, err := f.manager.Get("u1", sess.ID())
	if err != nil || got != sess {
		t.Fatalf("expected to find session, got %v", err)
	}
	if _, err := f.manager.Get("u2", sess.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("sessions must not be visible to other users, got %v", err)
	}
}

func TestSessionManager_RetiresOnAbandon(t *testing.T) {
	f := newRegistryFixture(2)
	ctx := context.Background()

	sess, err := f.manager.Start(ctx, "u1", domain.InstrumentPAPI)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sess.Abandon(); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if _, err := f.manager.Get("u1", sess.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("abandoned session must be removed, got %v", err)
	}
	if f.manager.Active() != 0 {
		t.Fatalf("expected empty registry, got %d", f.manager.Active())
	}
	if _, err := f.manager.Start(ctx, "u1", domain.InstrumentPAPI); err != nil {
		t.Fatalf("claim must be released after abandon: %v", err)
	}
}

func TestSessionManager_RetiresOnCompletionButKeepsPendingPersist(t *testing.T) {
	f := newRegistryFixture(1)
	ctx := context.Background()
	f.sink.errs = []error{ErrPersistence}

	sess, err := f.manager.Start(ctx, "u1", domain.InstrumentPAPI)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sess.AnswerOption("papi-01", 0); err != nil {
		t.Fatalf("answer: %v", err)
	}
	if _, err := sess.Submit(ctx); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if _, err := f.manager.Get("u1", sess.ID()); err != nil {
		t.Fatalf("session with pending persist must stay reachable: %v", err)
	}

	if _, err := sess.RetryPersist(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if _, err := f.manager.Get("u1", sess.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("completed session must be removed, got %v", err)
	}
}

func TestSessionManager_ClaimHeldElsewhere(t *testing.T) {
	f := newRegistryFixture(2)
	ctx := context.Background()
	// otra instancia ya reservo el instrumento
	if ok, _ := f.claimer.Claim(ctx, "u1", domain.InstrumentPAPI, "remote", time.Hour); !ok {
		t.Fatalf("seed claim failed")
	}

	if _, err := f.manager.Start(ctx, "u1", domain.InstrumentPAPI); !errors.Is(err, ErrSessionInProgress) {
		t.Fatalf("expected ErrSessionInProgress, got %v", err)
	}
	if f.manager.Active() != 0 {
		t.Fatalf("denied start must not register a session")
	}
}

func TestSessionManager_StartFailureReleasesClaim(t *testing.T) {
	f := newRegistryFixture(2)
	f.manager.gate = &mockGate{decision: StartAlreadyCompleted}
	ctx := context.Background()

	if _, err := f.manager.Start(ctx, "u1", domain.InstrumentPAPI); !errors.Is(err, ErrAlreadyAttempted) {
		t.Fatalf("expected ErrAlreadyAttempted, got %v", err)
	}
	if f.manager.Active() != 0 {
		t.Fatalf("failed start must not stay registered")
	}
	if ok, _ := f.claimer.Claim(ctx, "u1", domain.InstrumentPAPI, "other", time.Minute); !ok {
		t.Fatalf("claim must be released after failed start")
	}
}

func TestSessionManager_SweepAbandonsIdleSessions(t *testing.T) {
	f := newRegistryFixture(2)
	ctx := context.Background()

	idle, err := f.manager.Start(ctx, "u1", domain.InstrumentPAPI)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	f.now = f.now.Add(8 * time.Minute)
	busy, err := f.manager.Start(ctx, "u2", domain.InstrumentPAPI)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	swept := f.manager.Sweep(f.now.Add(3 * time.Minute))
	if swept != 1 {
		t.Fatalf("expected 1 swept session, got %d", swept)
	}
	if idle.State() != domain.SessionAbandoned {
		t.Fatalf("idle session should be abandoned, got %s", idle.State())
	}
	if busy.State() != domain.SessionInProgress {
		t.Fatalf("recent session must survive, got %s", busy.State())
	}
	if f.sink.Calls() != 0 {
		t.Fatalf("sweep must never persist")
	}
}

func TestSessionManager_UnknownInstrument(t *testing.T) {
	f := newRegistryFixture(2)
	if _, err := f.manager.Start(context.Background(), "u1", "disc"); !errors.Is(err, domain.ErrUnknownInstrument) {
		t.Fatalf("expected ErrUnknownInstrument, got %v", err)
	}
}

func TestSessionManager_CloseAbandonsAll(t *testing.T) {
	f := newRegistryFixture(2)
	ctx := context.Background()
	for _, user := range []string{"u1", "u2"} {
		if _, err := f.manager.Start(ctx, user, domain.InstrumentPAPI); err != nil {
			t.Fatalf("start %s: %v", user, err)
		}
	}
	f.manager.Close()
	if f.manager.Active() != 0 {
		t.Fatalf("expected all sessions retired, got %d", f.manager.Active())
	}
	if f.scheduler.Active() != 0 {
		t.Fatalf("expected all timers cancelled, got %d", f.scheduler.Active())
	}
}
