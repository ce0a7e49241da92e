// Package web provides the HTTP server and handlers for the alumni CSV converter.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/alumnicsv/internal/config"
	"github.com/JonMunkholm/alumnicsv/internal/core"
	"github.com/JonMunkholm/alumnicsv/internal/metric"
	mw "github.com/JonMunkholm/alumnicsv/internal/web/middleware"
)

// Server is the HTTP server for the converter.
type Server struct {
	service        *core.Service
	cfg            *config.Config
	router         *chi.Mux
	server         *http.Server
	metrics        *metric.Metrics
	metricsHandler http.Handler
	healthCheck    func(context.Context) error
}

// ServerOption customizes a Server.
type ServerOption func(*Server)

// WithMetrics records HTTP metrics in m and serves h on the configured
// metrics path.
func WithMetrics(m *metric.Metrics, h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = m
		s.metricsHandler = h
	}
}

// WithHealthCheck adds a dependency check to /healthz.
func WithHealthCheck(fn func(context.Context) error) ServerOption {
	return func(s *Server) { s.healthCheck = fn }
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config, opts ...ServerOption) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics(s.metrics))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleIndex)

	// Probes
	s.router.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled && s.metricsHandler != nil {
		s.router.Handle(s.cfg.Metrics.Path, s.metricsHandler)
	}

	// Conversion and history, rate limited and behind the optional API key.
	// Probes stay outside so load balancer checks never see a 429.
	s.router.Group(func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			limiter := newRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
			r.Use(limiter.middleware)
		}
		r.Use(mw.APIKeyAuth(&s.cfg.Security))

		r.Post("/transform", s.handleConvert(core.ModeTransform))
		r.Post("/normalize", s.handleConvert(core.ModeNormalize))

		r.Route("/api", func(r chi.Router) {
			r.Get("/runs", s.handleListRuns)
			r.Get("/status", s.handleStatus)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// The upload page uses inline styles only
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")

		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
