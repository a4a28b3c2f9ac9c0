// Package httpapi serves the read-only operator API over the answer statistics.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/sayingsbot/pkg/models"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// StatsReader is the read side of the statistics store
type StatsReader interface {
	List(ctx context.Context) ([]models.SayingStats, error)
	GetByID(ctx context.Context, id int64) (*models.SayingStats, error)
	Ping(ctx context.Context) error
}

// Config configures the HTTP server
type Config struct {
	Addr           string
	AllowedOrigins []string
}

// NewRouter wires the middleware stack and routes
func NewRouter(stats StatsReader, allowedOrigins []string, logger *slog.Logger) http.Handler {
	h := NewStatsHandler(stats, logger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(NewStructuredLogger(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}).Handler)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health", h.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/sayings", func(r chi.Router) {
			r.Get("/", h.ListSayings)
			r.Get("/{saying_id}", h.GetSaying)
		})
	})
	return r
}

// Server runs the operator API until its context is cancelled
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates a server for the given stats store
func NewServer(config Config, stats StatsReader, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              config.Addr,
			Handler:           NewRouter(stats, config.AllowedOrigins, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run listens until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
