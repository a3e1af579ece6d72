// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/zhqingit/voice-food-order/internal/config"
)

// Server wraps http.Server with the config-driven timeouts and a drain
// hook invoked before connections stop being accepted.
type Server struct {
	httpServer *http.Server
	cfg        config.ServerConfig
	onDrain    func()
}

func New(cfg config.ServerConfig, handler http.Handler, onDrain func()) *Server {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		cfg:     cfg,
		onDrain: onDrain,
	}
}

// Start blocks until the listener fails or Shutdown completes.
func (s *Server) Start() error {
	slog.Info("http server listening", "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}

// Shutdown drains readiness first so load balancers stop sending traffic,
// then lets in-flight requests finish within the configured window.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.onDrain != nil {
		s.onDrain()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
