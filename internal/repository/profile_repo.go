package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"career-assess/internal/domain"
)

// ProfileRepository guarda la proyeccion de resultados en el perfil del candidato.
type ProfileRepository interface {
	UpsertAssessment(ctx context.Context, userID string, assessment domain.ProfileAssessment, updatedAt time.Time) error
	GetByUserID(ctx context.Context, userID string) (domain.CandidateProfile, error)
}

type PgProfileRepository struct {
	pool querier
}

func NewPgProfileRepository(pool querier) *PgProfileRepository {
	return &PgProfileRepository{pool: pool}
}

// UpsertAssessment es idempotente: reescribir la misma proyeccion no cambia el perfil.
func (r *PgProfileRepository) UpsertAssessment(ctx context.Context, userID string, assessment domain.ProfileAssessment, updatedAt time.Time) error {
	const query = `
		INSERT INTO candidate_profiles (user_id, assessments, updated_at)
		VALUES ($1, jsonb_build_object($2::text, $3::jsonb), $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			assessments = candidate_profiles.assessments || EXCLUDED.assessments,
			updated_at = EXCLUDED.updated_at
	`
	raw, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("marshal assessment: %w", err)
	}
	_, err = r.pool.Exec(ctx, query,
		userID,
		string(assessment.Instrument),
		string(raw),
		updatedAt,
	)
	return err
}

func (r *PgProfileRepository) GetByUserID(ctx context.Context, userID string) (domain.CandidateProfile, error) {
	const query = `
		SELECT user_id, assessments, updated_at
		FROM candidate_profiles
		WHERE user_id = $1
	`
	var (
		profile domain.CandidateProfile
		raw     []byte
	)
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&raw,
		&profile.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CandidateProfile{}, err
	}
	if err != nil {
		return domain.CandidateProfile{}, err
	}
	if err := json.Unmarshal(raw, &profile.Assessments); err != nil {
		return domain.CandidateProfile{}, fmt.Errorf("unmarshal assessments: %w", err)
	}
	return profile, nil
}
