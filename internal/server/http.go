package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/signacademy/signquiz/internal/catalog"
	"github.com/signacademy/signquiz/internal/config"
	"github.com/signacademy/signquiz/internal/identity"
	"github.com/signacademy/signquiz/internal/quiz"
)

// NewHTTPServer wires all routes for the API service. Quiz routes require a
// valid bearer token; catalog browsing and operational routes do not.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redis *redis.Client, tokens *identity.Manager, quizHandlers *quiz.HTTPHandlers, catalogHandler *catalog.HTTPHandler) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redis); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	if catalogHandler != nil {
		mux.HandleFunc("/v1/signs", catalogHandler.HandleSigns)
		mux.HandleFunc("/v1/signs/", catalogHandler.HandleSigns)
	}

	if quizHandlers != nil {
		authed := identity.Require(tokens, logger)
		mux.Handle("/v1/quiz/start", authed(http.HandlerFunc(quizHandlers.Start)))
		mux.Handle("/v1/quiz/answer", authed(http.HandlerFunc(quizHandlers.Answer)))
		mux.Handle("/v1/quiz/finish", authed(http.HandlerFunc(quizHandlers.Finish)))
		mux.Handle("/v1/quiz/status", authed(http.HandlerFunc(quizHandlers.Status)))
		mux.Handle("/v1/quiz/reset", authed(http.HandlerFunc(quizHandlers.Reset)))
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redis *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redis.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}
