// gato-server runs the gato connection engine with a small set of demo
// routes. It is configured from the environment: PORT, GATO_MAX_CONNS,
// GATO_FRAMING, GATO_CHUNK_SIZE, GATO_LOG_LEVEL and GATO_STATIC.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gato/pkg/logging"
	"gato/pkg/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := server.ConfigFromEnv()
	if err != nil {
		// The configured level is unknown until the config parses.
		logger, _ := logging.New("", nil)
		logger.WithError(err).Fatal("invalid configuration")
	}

	logger, err := logging.New(cfg.LogLevel, nil)
	if err != nil {
		logger, _ = logging.New("", nil)
		logger.WithError(err).Fatal("invalid log level")
	}

	srv := server.New(cfg, newRouter(cfg, logger), logger)

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, server.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.WithField("signal", sig.String()).Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
		return
	}

	logger.Info("server exited")
}
