package core

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sitewizard/internal/types"
)

// defaultRequestTimeout is the soft deadline of a request context when the
// server configuration does not give a write timeout. The deadline has to
// expire before the HTTP write timeout, otherwise the connection is closed
// before a handler can write its error envelope.
const defaultRequestTimeout = 25 * time.Second

// defaultRedactedHeaders lists header names whose values are masked in request
// logs. Stripe-Signature is a replayable HMAC for the webhook body.
var defaultRedactedHeaders = []string{
	"Authorization",
	"Cookie",
	"Stripe-Signature",
}

// MountRoutes defines the top-level routing hierarchy: the global middleware
// chain, the /v1 group with every domain handler, and /health outside the
// versioned namespace so load balancers never depend on the API version.
func (s *Server) MountRoutes() {
	// Global middleware (strict order matters).
	s.registerGlobalMiddleware()

	// API version groups.
	s.router.Route("/v1", s.mountV1)

	// Top-level routes.
	s.router.Get("/health", s.HandleHealth)
}

// registerGlobalMiddleware applies middleware in strict order.
//
// Ordering:
//  1. Recoverer        - Outermost; every panic below becomes a 500 envelope.
//  2. ContextTimeout   - Soft deadline, shorter than the write timeout.
//  3. RequestID        - Correlation id; everything below logs with it.
//  4. SecurityHeaders  - Set before any handler can write.
//  5. RequestLogger    - Structured access log with redacted headers.
//  6. CORS             - Answers preflights before they are counted or limited.
//  7. Metrics          - Latency and count per chi route pattern.
//  8. RateLimit        - Fixed window per client IP; /health is exempt.
//
// The wizard has no authentication layer: the unguessable session id in the
// path is the only capability, so nothing needs to run between Metrics and
// RateLimit.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	s.router.Use(ContextTimeoutMiddleware(s.requestTimeout()))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(s.SecurityHeadersMiddleware)
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(NewCORSMiddleware(s.corsAllowedOrigins()))
	s.router.Use(s.MetricsMiddleware)
	s.router.Use(s.RateLimitMiddleware)
}

// mountV1 registers the v1 endpoints. Handler packages contribute routes
// through V1RouteRegistrars, populated by cmd/api, which keeps core free of
// imports on the handler packages.
func (s *Server) mountV1(r chi.Router) {
	for _, registrar := range s.V1RouteRegistrars {
		registrar(r)
	}
}

// requestTimeout derives the request deadline from the configured write
// timeout, one second shorter, and falls back to defaultRequestTimeout.
func (s *Server) requestTimeout() time.Duration {
	if s.Config != nil && s.Config.Server.WriteTimeout > time.Second {
		return s.Config.Server.WriteTimeout - time.Second
	}
	return defaultRequestTimeout
}

// corsAllowedOrigins returns the configured origins, or "*" when none are
// set. Credentials are never allowed, so a wildcard exposes no cookies.
func (s *Server) corsAllowedOrigins() []string {
	if s.Config != nil && len(s.Config.Server.CORSAllowedOrigins) > 0 {
		return s.Config.Server.CORSAllowedOrigins
	}
	return []string{"*"}
}

// ContextTimeoutMiddleware sets a deadline on the request context. Handlers
// and the stores below them observe ctx.Done(); what is written when the
// deadline passes is up to the handler.
func ContextTimeoutMiddleware(duration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), duration)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware propagates a correlation id. An incoming X-Request-Id
// is reused unless it is missing or longer than 128 bytes, in which case a
// UUID is generated.
//
// The id is stored in the context via types.WithRequestID and echoed as the
// X-Request-Id response header so clients can quote it.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r.WithContext(types.WithRequestID(r.Context(), requestID)))
	})
}
