package web

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"screenbalance/internal/config"
)

type Server struct {
	config  *config.Config
	handler *Handler
	server  *http.Server
	logger  zerolog.Logger
}

func NewServer(cfg *config.Config, handler *Handler, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	httpServer := &http.Server{
		Addr:         cfg.WebAddress(),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		config:  cfg,
		handler: handler,
		server:  httpServer,
		logger:  logger.With().Str("component", "web").Logger(),
	}
}

// Start blocks serving HTTP until Shutdown
func (s *Server) Start() error {
	s.logger.Info().Str("addr", "http://"+s.server.Addr).Msg("Starting web server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Shutting down web server")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
