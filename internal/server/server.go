package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/cs-tungthanh/fcc-microservices/internal/config"
	"github.com/cs-tungthanh/fcc-microservices/internal/logger"
)

// Run listens on cfg.Port and serves handler until ctx is cancelled, then
// shuts down gracefully within cfg.ShutdownTimeout.
func Run(ctx context.Context, cfg *config.ServerConfig, handler http.Handler, log *logger.Logger) error {
	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", cfg.Port, err)
	}
	return Serve(ctx, ln, cfg, handler, log)
}

// Serve is Run on an existing listener
func Serve(ctx context.Context, ln net.Listener, cfg *config.ServerConfig, handler http.Handler, log *logger.Logger) error {
	if log == nil {
		log = logger.Discard()
	}

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", ln.Addr().String())
		serverErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err.Error())
			if err := srv.Close(); err != nil {
				log.Error("forced shutdown failed", "error", err.Error())
			}
			return fmt.Errorf("shutdown: %w", err)
		}

		log.Info("server stopped")
		return nil
	}
}
