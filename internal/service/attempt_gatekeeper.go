package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"career-assess/internal/domain"
)

type StartDecision int

const (
	StartAllowed StartDecision = iota
	StartAlreadyCompleted
)

func (d StartDecision) String() string {
	switch d {
	case StartAllowed:
		return "allowed"
	case StartAlreadyCompleted:
		return "already_completed"
	default:
		return fmt.Sprintf("StartDecision(%d)", int(d))
	}
}

// AttemptLookup consulta si ya existe un resultado para (usuario, instrumento).
type AttemptLookup interface {
	ExistsForUser(ctx context.Context, userID string, instrument domain.Instrument) (bool, error)
}

// AttemptGatekeeper decide si un usuario puede iniciar un instrumento.
// Consulta la persistencia en cada llamada: no hay cache entre sesiones.
type AttemptGatekeeper struct {
	results    AttemptLookup
	retryDelay time.Duration
	logger     *zap.Logger
}

func NewAttemptGatekeeper(results AttemptLookup, retryDelay time.Duration, logger *zap.Logger) *AttemptGatekeeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttemptGatekeeper{
		results:    results,
		retryDelay: retryDelay,
		logger:     logger,
	}
}

func (g *AttemptGatekeeper) MayStart(ctx context.Context, userID string, instrument domain.Instrument) (StartDecision, error) {
	if err := instrument.Validate(); err != nil {
		return StartAllowed, err
	}

	var exists bool
	err := retryOnce(ctx, g.retryDelay, func() error {
		var err error
		exists, err = g.results.ExistsForUser(ctx, userID, instrument)
		if err != nil {
			g.logger.Warn("prior attempt lookup failed",
				zap.String("user_id", userID),
				zap.String("instrument", instrument.String()),
				zap.Error(err),
			)
		}
		return err
	})
	if err != nil {
		return StartAllowed, fmt.Errorf("check prior attempt: %w", err)
	}

	if exists {
		return StartAlreadyCompleted, nil
	}
	return StartAllowed, nil
}

// retryOnce ejecuta fn y, si falla, lo reintenta una sola vez tras delay.
// Los errores marcados con permanent no se reintentan.
func retryOnce(ctx context.Context, delay time.Duration, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	var stop permanentError
	if errors.As(err, &stop) {
		return stop.err
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return err
		case <-timer.C:
		}
	} else if ctx.Err() != nil {
		return err
	}
	err = fn()
	if errors.As(err, &stop) {
		return stop.err
	}
	return err
}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

func permanent(err error) error {
	return permanentError{err: err}
}
