package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"career-assess/internal/config"
	"career-assess/internal/db"
	apihttp "career-assess/internal/http"
	"career-assess/internal/questionbank"
	"career-assess/internal/repository"
	"career-assess/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, pool); err != nil {
			logger.Fatal("db migrate", zap.Error(err))
		}
	}

	bank, err := questionbank.LoadDefault(cfg.QuestionCounts())
	if err != nil {
		logger.Fatal("question bank", zap.Error(err))
	}

	resultRepo := repository.NewPgResultRepository(pool)
	profileRepo := repository.NewPgProfileRepository(pool)

	var claimer service.SessionClaimer
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisClient.Close()
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			claimer = service.NewRedisSessionClaimer(redisClient, logger)
		}
		cancel()
	}

	jwtSvc := service.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, 0)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	resultSvc := service.NewResultService(resultRepo, profileRepo, cfg.PersistRetryDelay, logger)
	gatekeeper := service.NewAttemptGatekeeper(resultRepo, cfg.PersistRetryDelay, logger)
	sessions := service.NewSessionManager(gatekeeper, bank, resultSvc, claimer, service.SessionManagerConfig{
		Session: service.SessionConfig{
			QuestionSeconds: cfg.QuestionSeconds,
			TickInterval:    cfg.TickInterval,
			PersistTimeout:  cfg.PersistTimeout,
		},
		ClaimTTL: cfg.SessionTTL,
		IdleTTL:  cfg.SessionIdleTTL,
	}, logger)
	stopSweeper := sessions.StartSweeper(service.NewRealScheduler(), time.Minute)
	defer stopSweeper()
	defer sessions.Close()

	assessHandler := apihttp.NewAssessmentHandler(logger, sessions, resultSvc, bank)
	router := apihttp.NewRouter(logger, jwtSvc, assessHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
