package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"career-assess/internal/config"
)

// NewPool abre el pool de Postgres donde viven resultados y perfiles.
// Las consultas son cortas (un insert o un select por intento), asi que el pool es chico.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	applyPoolLimits(poolCfg, cfg)
	return pgxpool.NewWithConfig(ctx, poolCfg)
}

func applyPoolLimits(poolCfg *pgxpool.Config, cfg *config.Config) {
	maxConns := cfg.DBMaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	minConns := cfg.DBMinConns
	if minConns < 0 || minConns > maxConns {
		minConns = 1
	}
	poolCfg.MaxConns = maxConns
	poolCfg.MinConns = minConns
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 30 * time.Second
	// la persistencia de un resultado tiene su propio timeout; conectar no debe consumirlo entero
	poolCfg.ConnConfig.ConnectTimeout = 3 * time.Second
}

// Ping verifica que la base de resultados responda antes de aceptar sesiones.
func Ping(ctx context.Context, pool *pgxpool.Pool) error {
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping results database: %w", err)
	}
	return nil
}
