// Package server exposes the analyzer over HTTP: uploads are scored with
// POST /v1/analyze and the rule tables are listed under /v1.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inodb/vibe-pgx/internal/analyze"
	"github.com/inodb/vibe-pgx/internal/metrics"
)

// Config holds the HTTP server settings.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	ReadTimeout    time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Addr:           "127.0.0.1:8080",
		MaxUploadBytes: 32 << 20,
		ReadTimeout:    30 * time.Second,
	}
}

// Server serves analyses over HTTP. Every request gets its own marker map;
// the analyzer holds no per-request state.
type Server struct {
	server   *http.Server
	router   chi.Router
	analyzer *analyze.Analyzer
	cfg      Config
	logger   *zap.Logger
	started  time.Time
}

// New creates a server around analyzer.
func New(cfg Config, analyzer *analyze.Analyzer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:      router,
			Addr:         cfg.Addr,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.ReadTimeout,
			IdleTimeout:  60 * time.Second,
		},
		router:   router,
		analyzer: analyzer,
		cfg:      cfg,
		logger:   logger,
		started:  time.Now(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(requestSizeMiddleware(s.cfg.MaxUploadBytes, s.logger))
}

func (s *Server) setupRoutes() {
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/drugs", s.handleDrugs)
		r.Get("/drugs/{name}", s.handleDrug)
		r.Get("/genes", s.handleGenes)
	})
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", ln.Addr().String()))
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("server forced to shutdown", zap.Error(err))
		return s.server.Close()
	}
	return nil
}
