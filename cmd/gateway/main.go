// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

// Command gateway is the entry point for the MyDuka session gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Pick the session store (Redis when configured, memory otherwise).
//  4. Pick the auth gateway (external upstream, or embedded identity
//     provider backed by PostgreSQL + migrations).
//  5. Wire the session restorer and HTTP handlers.
//  6. Start HTTP server with graceful shutdown.
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

	"github.com/myduka/gateway/internal/api"
	"github.com/myduka/gateway/internal/authgw"
	"github.com/myduka/gateway/internal/entry"
	"github.com/myduka/gateway/internal/idp"
	"github.com/myduka/gateway/internal/platform/config"
	"github.com/myduka/gateway/internal/platform/constants"
	"github.com/myduka/gateway/internal/platform/migration"
	pgstore "github.com/myduka/gateway/internal/platform/postgres"
	redisstore "github.com/myduka/gateway/internal/platform/redis"
	"github.com/myduka/gateway/internal/platform/sec"
	"github.com/myduka/gateway/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[MyDuka] gateway_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Bool("embedded_identity", cfg.EmbeddedIdentity()),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	healthDeps := api.HealthDependencies{}

	// ── 3. Session Store ──────────────────────────────────────────────────
	var store session.Store
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()

		store = session.NewRedisStore(rdb)
		healthDeps.CheckCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	} else {
		log.Warn("redis_not_configured_using_memory_store")
		store = session.NewMemoryStore()
	}

	// ── 4. Auth Gateway ───────────────────────────────────────────────────
	var gateway authgw.AuthGateway
	var identityHandler *idp.Handler

	if cfg.EmbeddedIdentity() {
		pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("closing postgres pool")
			pool.Close()
		}()

		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

		tokens := sec.NewTokenService(cfg.AuthSecret, constants.AuthIssuer)
		identityService := idp.NewService(idp.NewPostgresUserRepository(pool), tokens)

		gateway = idp.NewGateway(identityService)
		identityHandler = idp.NewHandler(identityService)
		healthDeps.CheckDatabase = func() error {
			return pgstore.Ping(context.Background(), pool)
		}
	} else {
		log.Info("using_external_auth_upstream", slog.String("url", cfg.UpstreamAuthURL))
		gateway = authgw.NewClient(cfg.UpstreamAuthURL)
	}

	// ── 5. Domain Wiring ──────────────────────────────────────────────────
	restorer := session.NewRestorer(store, gateway)
	entryHandler := entry.NewHandler(store, restorer, gateway)
	liveness, readiness := api.NewHealthHandlers(healthDeps, log)

	// ── 6. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Entry:     entryHandler,
		Identity:  identityHandler,
	}

	server := api.NewServer(serverCtx, cfg, log, store, restorer, handlers)

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
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
