package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema crea las tablas del motor de evaluaciones. La restriccion UNIQUE de
// assessment_results es la que garantiza un solo resultado por usuario e instrumento.
const schema = `
CREATE TABLE IF NOT EXISTS assessment_results (
	id           TEXT PRIMARY KEY,
	user_id      TEXT        NOT NULL,
	instrument   TEXT        NOT NULL,
	payload      JSONB       NOT NULL,
	completed_at TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT assessment_results_user_instrument_key UNIQUE (user_id, instrument)
);

CREATE TABLE IF NOT EXISTS candidate_profiles (
	user_id     TEXT PRIMARY KEY,
	assessments JSONB       NOT NULL DEFAULT '{}'::jsonb,
	updated_at  TIMESTAMPTZ NOT NULL
);
`

// Migrate aplica el esquema de forma idempotente.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
