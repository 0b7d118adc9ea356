package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"career-assess/internal/config"
	"career-assess/internal/db"
	"career-assess/internal/domain"
	"career-assess/internal/questionbank"
	"career-assess/internal/repository"
	"career-assess/internal/service"
)

// deps agrupa lo que necesitan los comandos. close libera el pool si existe.
type deps struct {
	cfg     *config.Config
	logger  *zap.Logger
	bank    *questionbank.Bank
	results *service.ResultService
	gate    *service.AttemptGatekeeper
	close   func()
}

func buildDeps(ctx context.Context, cmd *cobra.Command) (*deps, error) {
	offline, _ := cmd.Flags().GetBool("offline")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger := zap.NewNop()
	if verbose {
		logger, _ = zap.NewDevelopment()
	}

	cfg, err := loadConfig(offline)
	if err != nil {
		return nil, err
	}

	bank, err := questionbank.LoadDefault(cfg.QuestionCounts())
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	d := &deps{cfg: cfg, logger: logger, bank: bank, close: func() { _ = logger.Sync() }}

	var (
		resultRepo  repository.ResultRepository
		profileRepo repository.ProfileRepository
	)
	if offline {
		resultRepo = repository.NewMemoryResultRepository()
		profileRepo = repository.NewMemoryProfileRepository()
	} else {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if err := db.Ping(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if cfg.AutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, fmt.Errorf("db migrate: %w", err)
			}
		}
		resultRepo = repository.NewPgResultRepository(pool)
		profileRepo = repository.NewPgProfileRepository(pool)
		d.close = func() {
			pool.Close()
			_ = logger.Sync()
		}
	}

	d.results = service.NewResultService(resultRepo, profileRepo, cfg.PersistRetryDelay, logger)
	d.gate = service.NewAttemptGatekeeper(resultRepo, cfg.PersistRetryDelay, logger)
	return d, nil
}

// loadConfig en modo offline no exige DATABASE_URL.
func loadConfig(offline bool) (*config.Config, error) {
	if offline && os.Getenv("DATABASE_URL") == "" {
		if err := os.Setenv("DATABASE_URL", "offline"); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func instrumentArg(args []string) (domain.Instrument, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("%w: missing instrument (one of %v)", domain.ErrUnknownInstrument, domain.Instruments())
	}
	return domain.ParseInstrument(args[0])
}
