// Copyright (c) 2026 MyDuka. All rights reserved.
// Author: platform@myduka.app

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/gateway are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/myduka/gateway/internal/entry"
	"github.com/myduka/gateway/internal/guard"
	"github.com/myduka/gateway/internal/idp"
	"github.com/myduka/gateway/internal/platform/config"
	"github.com/myduka/gateway/internal/platform/constants"
	"github.com/myduka/gateway/internal/platform/middleware"
	"github.com/myduka/gateway/internal/roles"
	"github.com/myduka/gateway/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler. It always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Entry serves the entry surface, auth endpoints, and session restore.
	Entry *entry.Handler

	// Identity is the embedded identity provider surface.
	// nil when an external authentication upstream is configured.
	Identity *idp.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups, including the guarded dashboard routes.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, store session.Store, restorer *session.Restorer, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.BrowserSession())
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Entry Surface
	r.Get("/", h.Entry.Surface)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Entry.AuthRoutes())
		api.Post("/session/restore", h.Entry.RestoreSession)
	})

	// # Guarded Dashboards
	// Each dashboard admits exactly its own role; shared feature routes
	// list every permitted role explicitly.
	r.With(guard.Protect(store, restorer, roles.RoleMerchant)).
		Get("/merchant", dashboardHandler(roles.RoleMerchant))
	r.With(guard.Protect(store, restorer, roles.RoleAdmin)).
		Get("/admin", dashboardHandler(roles.RoleAdmin))
	r.With(guard.Protect(store, restorer, roles.RoleClerk)).
		Get("/clerk", dashboardHandler(roles.RoleClerk))
	r.With(guard.Protect(store, restorer, roles.RoleMerchant, roles.RoleAdmin)).
		Get("/reports", reportsHandler())

	// # Embedded Identity Provider
	if h.Identity != nil {
		r.Mount("/idp/v1", h.Identity.Routes())
	}

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
