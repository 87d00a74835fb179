// Copyright (c) 2026 Openpress. All rights reserved.
// Author: dev@openpress.org

// Command api is the entry point for the Scholar HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openpress/scholar/internal/api"
	"github.com/openpress/scholar/internal/core/affiliation"
	"github.com/openpress/scholar/internal/core/author"
	"github.com/openpress/scholar/internal/core/citation"
	"github.com/openpress/scholar/internal/core/publication"
	"github.com/openpress/scholar/internal/core/recommendation"
	"github.com/openpress/scholar/internal/core/ror"
	"github.com/openpress/scholar/internal/jobs"
	"github.com/openpress/scholar/internal/platform/config"
	"github.com/openpress/scholar/internal/platform/constants"
	"github.com/openpress/scholar/internal/platform/migration"
	pgstore "github.com/openpress/scholar/internal/platform/postgres"
	"github.com/openpress/scholar/internal/platform/queue"
	redisstore "github.com/openpress/scholar/internal/platform/redis"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "scholar"))
	slog.SetDefault(log)

	log.Info("[Scholar] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "scholar"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("primary_locale", cfg.PrimaryLocale()),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Job Queue ──────────────────────────────────────────────────────
	producer := queue.NewProducer(rdb, log)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckQueue: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Domain Wiring ──────────────────────────────────────────────────
	// Stores first, then services bottom-up: the ROR cache and the
	// publication directory feed the child domains, the child domains feed
	// the publication aggregate.
	rorStore := ror.NewPostgresStore(pool)
	publicationStore := publication.NewPostgresStore(pool)
	authorStore := author.NewPostgresStore(pool)
	affiliationStore := affiliation.NewPostgresStore(pool)
	citationStore := citation.NewPostgresStore(pool)
	recommendationStore := recommendation.NewPostgresStore(pool)

	publicationDirectory := publication.NewDirectory(publicationStore)

	rorService := ror.NewService(rorStore, log, jobs.NewRegistrySyncNotifier(producer, log))
	affiliationService := affiliation.NewService(affiliationStore, author.NewDirectory(authorStore), rorService, log)
	authorService := author.NewService(authorStore, affiliationService, publicationDirectory, log)
	citationService := citation.NewService(citationStore, publicationDirectory, log, jobs.NewCitationImportNotifier(producer, log))
	recommendationService := recommendation.NewService(recommendationStore, recommendation.NewPostgresAssignmentCounter(pool), log)
	publicationService := publication.NewService(publicationStore, citationService, authorService, log)

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:       liveness,
		Readiness:      readiness,
		Publication:    publication.NewHandler(publicationService, cfg),
		Author:         author.NewHandler(authorService, cfg),
		Affiliation:    affiliation.NewHandler(affiliationService, cfg),
		Citation:       citation.NewHandler(citationService),
		Recommendation: recommendation.NewHandler(recommendationService, cfg),
		Ror:            ror.NewHandler(rorService),
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	server := api.NewServer(serverCtx, cfg, log, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
