package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"suspicious-account-graph/internal/infrastructure/config"
	"suspicious-account-graph/internal/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the HTTP server lifecycle
type Server struct {
	srv    *http.Server
	config *config.HTTPConfig
	logger *logger.Logger
}

// NewServer creates the HTTP server around the router
func NewServer(cfg *config.HTTPConfig, router *gin.Engine, logger *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Port),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		config: cfg,
		logger: logger.WithComponent("http-server"),
	}
}

// Start begins serving in a background goroutine
func (s *Server) Start() {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.srv.Addr))
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}()
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.srv.Shutdown(ctx)
}
