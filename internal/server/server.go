// Package server assembles the HTTP surface and owns its lifecycle.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"astraxis-server/internal/shared/config"
)

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

func New(handlers *Handlers, logger *slog.Logger) *Server {
	cfg := config.GlobalConfig.Server

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      buildRoutes(handlers, logger),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}
