package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"reelforge/internal/app"
)

// Server exposes the workflow over a local HTTP API. Message handling can
// span an entire production run, so the write timeout stays unset.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	ListenAddr   string
	Version      string
	StartTime    time.Time
	Orchestrator *app.Orchestrator
	Sessions     *app.SessionStore
	Logger       *slog.Logger
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.ListenAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
