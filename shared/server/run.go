package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"
)

// Cleanup releases a resource once the HTTP server has stopped accepting requests.
type Cleanup func(ctx context.Context) error

// Run starts the HTTP server and performs a graceful shutdown when the process receives an interrupt.
// Cleanups run in order after the server has shut down.
func Run(ctx context.Context, srv *http.Server, logger *slog.Logger, cleanups ...Cleanup) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	for _, cleanup := range cleanups {
		if cerr := cleanup(shutdownCtx); cerr != nil {
			logger.Error("cleanup failed", "error", cerr)
		}
	}
	return err
}
