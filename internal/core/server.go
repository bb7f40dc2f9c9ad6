// Package core provides the HTTP chassis of the site wizard API: a chi
// router with the cross-cutting middleware (recovery, request ids, logging,
// CORS, metrics, rate limiting), the response envelope, strict JSON
// decoding, request validation and the health endpoint. Domain handlers
// register themselves through V1RouteRegistrars.
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"sitewizard/internal/config"
)

// MetricsCollector records API request telemetry.
type MetricsCollector interface {
	RecordRequest(method, endpoint, status string, duration time.Duration)
}

// Server holds the dependencies of the API router. Optional collaborators
// (Metrics, RateLimitStore, HealthProbes) are set by the entry point before
// MountRoutes; a nil value disables the corresponding middleware.
type Server struct {
	Config         *config.Config
	Logger         *slog.Logger
	Validator      *Validator
	Metrics        MetricsCollector
	RateLimitStore RateLimitStore
	RateLimit      RateLimitPolicy
	HealthProbes   []HealthProbe

	// V1RouteRegistrars mount domain handlers under /v1. Handlers live in
	// their own packages and import core, so core cannot import them.
	V1RouteRegistrars []func(chi.Router)

	router   *chi.Mux
	closers  []func(context.Context) error
	shutdown bool
}

// NewServer creates a Server with an empty router. Routes are mounted by
// MountRoutes once the optional collaborators are in place.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config must not be nil")
	}
	if logger == nil {
		return nil, errors.New("logger must not be nil")
	}
	return &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		RateLimit: DefaultRateLimitPolicy(),
		router:    chi.NewRouter(),
	}, nil
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// OnShutdown registers fn to run during Shutdown. Hooks run in reverse
// registration order, so resources opened first are closed last.
func (s *Server) OnShutdown(fn func(context.Context) error) {
	s.closers = append(s.closers, fn)
}

// Shutdown runs the registered hooks. Every hook runs even when an earlier
// one fails; the failures are joined. A second call is a no-op.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdown {
		return nil
	}
	s.shutdown = true
	s.Logger.Info("server shutdown initiated")

	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			s.Logger.Error("shutdown hook failed", "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %w", errors.Join(errs...))
	}

	s.Logger.Info("server shutdown complete")
	return nil
}
