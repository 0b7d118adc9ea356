package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"career-assess/internal/domain"
	"career-assess/internal/repository"
)

// ResultService persiste resultados y mantiene la proyeccion en el perfil del candidato.
// La tabla de resultados es la fuente de verdad; el perfil se actualiza best-effort.
type ResultService struct {
	results    repository.ResultRepository
	profiles   repository.ProfileRepository
	retryDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewResultService(results repository.ResultRepository, profiles repository.ProfileRepository, retryDelay time.Duration, logger *zap.Logger) *ResultService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{
		results:    results,
		profiles:   profiles,
		retryDelay: retryDelay,
		logger:     logger,
		now:        time.Now,
	}
}

// Persist guarda el resultado (la primera escritura gana) y lo proyecta en el perfil.
// Un fallo de la proyeccion se registra pero no invalida el id devuelto.
func (s *ResultService) Persist(ctx context.Context, result domain.Result) (string, error) {
	if err := result.Instrument.Validate(); err != nil {
		return "", err
	}
	if strings.TrimSpace(result.UserID) == "" {
		return "", fmt.Errorf("%w: result without user id", ErrPersistence)
	}

	var id string
	attempt := 0
	err := retryOnce(ctx, s.retryDelay, func() error {
		attempt++
		var err error
		id, err = s.results.Create(ctx, result)
		if errors.Is(err, repository.ErrResultExists) {
			// una escritura previa del mismo resultado pudo haber llegado aunque fallo la respuesta,
			// en este intento o en una llamada anterior
			if stored, getErr := s.results.GetForUser(ctx, result.UserID, result.Instrument); getErr == nil && stored.ID == result.ID {
				id = stored.ID
				return nil
			}
			return permanent(err)
		}
		if err != nil {
			s.logger.Warn("persist result attempt failed",
				zap.String("user_id", result.UserID),
				zap.String("result_id", result.ID),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	})
	if errors.Is(err, repository.ErrResultExists) {
		return "", fmt.Errorf("%w: user %s instrument %s", ErrResultConflict, result.UserID, result.Instrument)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	result.ID = id
	if err := s.project(ctx, result); err != nil {
		s.logger.Error("failed to denormalize result into profile",
			zap.String("user_id", result.UserID),
			zap.String("result_id", id),
			zap.Error(err),
		)
	}
	return id, nil
}

// GetResult devuelve el resultado guardado de un instrumento.
func (s *ResultService) GetResult(ctx context.Context, userID string, instrument domain.Instrument) (domain.Result, error) {
	if err := instrument.Validate(); err != nil {
		return domain.Result{}, err
	}
	result, err := s.results.GetForUser(ctx, userID, instrument)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, fmt.Errorf("%w: %s", ErrResultNotFound, instrument)
	}
	return result, err
}

func (s *ResultService) ListResults(ctx context.Context, userID string) ([]domain.Result, error) {
	return s.results.ListByUser(ctx, userID)
}

// Profile devuelve la proyeccion del candidato; un perfil inexistente se devuelve vacio.
func (s *ResultService) Profile(ctx context.Context, userID string) (domain.CandidateProfile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CandidateProfile{UserID: userID, Assessments: map[domain.Instrument]domain.ProfileAssessment{}}, nil
	}
	return profile, err
}

// ResyncProfile vuelve a proyectar todos los resultados del usuario. Es idempotente.
func (s *ResultService) ResyncProfile(ctx context.Context, userID string) (int, error) {
	results, err := s.results.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list results: %w", err)
	}

	synced := 0
	var errs []error
	for _, result := range results {
		if err := s.project(ctx, result); err != nil {
			errs = append(errs, fmt.Errorf("project %s: %w", result.Instrument, err))
			continue
		}
		synced++
	}

	s.logger.Info("profile resync finished",
		zap.String("user_id", userID),
		zap.Int("results", len(results)),
		zap.Int("synced", synced),
	)
	return synced, errors.Join(errs...)
}

func (s *ResultService) project(ctx context.Context, result domain.Result) error {
	if s.profiles == nil {
		return nil
	}
	assessment, err := domain.NewProfileAssessment(result)
	if err != nil {
		return err
	}
	return retryOnce(ctx, s.retryDelay, func() error {
		return s.profiles.UpsertAssessment(ctx, result.UserID, assessment, s.now().UTC())
	})
}
