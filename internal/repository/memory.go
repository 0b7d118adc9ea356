package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"career-assess/internal/domain"
)

type resultKey struct {
	userID     string
	instrument domain.Instrument
}

// MemoryResultRepository guarda resultados en memoria. Lo usan el CLI sin base
// de datos y los tests de integracion del router.
type MemoryResultRepository struct {
	mu      sync.Mutex
	results map[resultKey]domain.Result
}

func NewMemoryResultRepository() *MemoryResultRepository {
	return &MemoryResultRepository{results: make(map[resultKey]domain.Result)}
}

func (r *MemoryResultRepository) Create(_ context.Context, result domain.Result) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := resultKey{userID: result.UserID, instrument: result.Instrument}
	if _, exists := r.results[key]; exists {
		return "", ErrResultExists
	}
	r.results[key] = result
	return result.ID, nil
}

func (r *MemoryResultRepository) ExistsForUser(_ context.Context, userID string, instrument domain.Instrument) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.results[resultKey{userID: userID, instrument: instrument}]
	return ok, nil
}

func (r *MemoryResultRepository) GetForUser(_ context.Context, userID string, instrument domain.Instrument) (domain.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result, ok := r.results[resultKey{userID: userID, instrument: instrument}]
	if !ok {
		return domain.Result{}, pgx.ErrNoRows
	}
	return result, nil
}

func (r *MemoryResultRepository) ListByUser(_ context.Context, userID string) ([]domain.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Result
	for key, result := range r.results {
		if key.userID == userID {
			out = append(out, result)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out, nil
}

// MemoryProfileRepository es la contraparte en memoria de PgProfileRepository.
type MemoryProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]domain.CandidateProfile
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]domain.CandidateProfile)}
}

func (r *MemoryProfileRepository) UpsertAssessment(_ context.Context, userID string, assessment domain.ProfileAssessment, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		profile = domain.CandidateProfile{UserID: userID, Assessments: make(map[domain.Instrument]domain.ProfileAssessment)}
	}
	profile.Assessments[assessment.Instrument] = assessment
	profile.UpdatedAt = updatedAt
	r.profiles[userID] = profile
	return nil
}

func (r *MemoryProfileRepository) GetByUserID(_ context.Context, userID string) (domain.CandidateProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return domain.CandidateProfile{}, pgx.ErrNoRows
	}
	out := profile
	out.Assessments = make(map[domain.Instrument]domain.ProfileAssessment, len(profile.Assessments))
	for k, v := range profile.Assessments {
		out.Assessments[k] = v
	}
	return out, nil
}
