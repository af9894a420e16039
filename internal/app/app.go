package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/signacademy/signquiz/internal/catalog"
	"github.com/signacademy/signquiz/internal/config"
	"github.com/signacademy/signquiz/internal/identity"
	"github.com/signacademy/signquiz/internal/logging"
	"github.com/signacademy/signquiz/internal/progress"
	"github.com/signacademy/signquiz/internal/quiz"
	"github.com/signacademy/signquiz/internal/server"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis and the HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	if cfg.Security.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be configured")
	}
	tokens := identity.NewManager(identity.TokenConfig{
		Secret: []byte(cfg.Security.JWTSecret),
		Issuer: cfg.Security.JWTIssuer,
	})

	signRepo := catalog.NewRepository(pool)
	textCache := catalog.NewTextCache(redisClient, cfg.Catalog.TextCacheTTL)
	catalogSvc := catalog.NewService(signRepo, textCache)
	catalogHandler := catalog.NewHTTPHandler(catalogSvc, cfg.Catalog.DefaultSearchLimit, logger)

	sessions := quiz.NewRedisStore(redisClient, cfg.Quiz.SessionTTL, logger)
	ledger := progress.NewPostgresStore(pool)
	builder := quiz.NewBuilder(catalogSvc, nil)

	quizSvc := quiz.NewService(sessions, ledger, builder, quiz.ServiceOptions{
		DefaultQuestionCount: cfg.Quiz.DefaultQuestionCount,
		MaxQuestionCount:     cfg.Quiz.MaxQuestionCount,
	}, logger)
	quizHandlers := quiz.NewHTTPHandlers(quizSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, tokens, quizHandlers, catalogHandler)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}
