package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"career-assess/internal/domain"
)

// ErrResultExists indica que ya hay un resultado para (usuario, instrumento).
var ErrResultExists = errors.New("result already exists")

// ResultRepository define el contrato de persistencia de resultados.
type ResultRepository interface {
	Create(ctx context.Context, result domain.Result) (string, error)
	ExistsForUser(ctx context.Context, userID string, instrument domain.Instrument) (bool, error)
	GetForUser(ctx context.Context, userID string, instrument domain.Instrument) (domain.Result, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Result, error)
}

// querier es el subconjunto de pgxpool.Pool que usan los repositorios.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgResultRepository implementa ResultRepository usando pgxpool.
type PgResultRepository struct {
	pool querier
}

func NewPgResultRepository(pool querier) *PgResultRepository {
	return &PgResultRepository{pool: pool}
}

// Create inserta el resultado. La primera escritura gana: un duplicado devuelve ErrResultExists.
func (r *PgResultRepository) Create(ctx context.Context, result domain.Result) (string, error) {
	const query = `
		INSERT INTO assessment_results (id, user_id, instrument, payload, completed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, instrument) DO NOTHING
		RETURNING id
	`
	payload, err := json.Marshal(result.Payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	var id string
	err = r.pool.QueryRow(ctx, query,
		result.ID,
		result.UserID,
		string(result.Instrument),
		payload,
		result.CompletedAt,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrResultExists
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *PgResultRepository) ExistsForUser(ctx context.Context, userID string, instrument domain.Instrument) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM assessment_results WHERE user_id = $1 AND instrument = $2
		)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, string(instrument)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgResultRepository) GetForUser(ctx context.Context, userID string, instrument domain.Instrument) (domain.Result, error) {
	const query = `
		SELECT id, user_id, instrument, payload, completed_at
		FROM assessment_results
		WHERE user_id = $1 AND instrument = $2
	`
	result, err := scanResult(r.pool.QueryRow(ctx, query, userID, string(instrument)))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, err
	}
	return result, err
}

func (r *PgResultRepository) ListByUser(ctx context.Context, userID string) ([]domain.Result, error) {
	const query = `
		SELECT id, user_id, instrument, payload, completed_at
		FROM assessment_results
		WHERE user_id = $1
		ORDER BY completed_at
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (domain.Result, error) {
	var (
		result     domain.Result
		instrument string
		payload    []byte
	)
	if err := row.Scan(
		&result.ID,
		&result.UserID,
		&instrument,
		&payload,
		&result.CompletedAt,
	); err != nil {
		return domain.Result{}, err
	}
	result.Instrument = domain.Instrument(instrument)
	if err := json.Unmarshal(payload, &result.Payload); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal payload of result %s: %w", result.ID, err)
	}
	return result, nil
}
