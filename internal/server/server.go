// Package server exposes internal/differ as a small HTTP API, in the
// shape of internal/api's handler registration style, reduced to the
// one service this tool provides.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/rurban/mysqldiff/internal/apikey"
	"github.com/rurban/mysqldiff/internal/config"
)

// Server is the mysqldiff HTTP API.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *Metrics
	auth    *apikey.Checker
	router  chi.Router
	http    *http.Server
}

// New builds a Server and wires its routes.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger,
		metrics: NewMetrics(),
		auth:    apikey.NewChecker(cfg.APIKey.Hash),
	}
	s.setupRouter()
	return s
}

// Metrics returns the server's metrics instance, exposing its collectors
// to tests and cmd/mysqldiff; its registry is unexported, so no further
// collectors can be registered through it.
func (s *Server) Metrics() *Metrics { return s.metrics }

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Handler().ServeHTTP(w, r)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAPIKey)
		r.Post("/v1/diff", s.handleDiff)
		r.Post("/v1/refs", s.handleRefs)
	})

	s.router = r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.metrics.RequestsTotal.WithLabelValues(r.URL.Path, http.StatusText(ww.Status())).Inc()
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := s.cfg.APIKey.Header
		if header == "" {
			header = "X-API-Key"
		}
		key := r.Header.Get(header)
		if err := s.auth.Check(key); err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Start runs the HTTP server until the context is cancelled, then shuts
// it down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", slog.String("address", s.cfg.Address()))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// ServeHTTP lets tests exercise the router directly with
// httptest.NewRecorder without starting a real listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
