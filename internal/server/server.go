package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/globalroute/navigator/internal/config"
	"github.com/globalroute/navigator/internal/planner"
)

// Server exposes the planner over HTTP.
type Server struct {
	planner *planner.Planner

	httpServer *http.Server
	handler    http.Handler
	corsOrigin string
	schema     *jsonschema.Resolved
}

// NewServer builds the HTTP server around an existing planner.
func NewServer(p *planner.Planner, cfg config.ServerConfig) (*Server, error) {
	schema, err := findPathsSchema().Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("invalid request schema: %w", err)
	}

	s := &Server{
		planner:    p,
		corsOrigin: cfg.CORSOrigin,
		schema:     schema,
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Chain middlewares: Recovery -> Logging -> CORS -> Mux
	// Recovery must be outer-most to catch everything.
	var handler http.Handler = mux
	handler = s.CORSMiddleware(handler)
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)
	s.handler = handler

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	slog.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) {
	slog.Info("Starting graceful shutdown of HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}
}
