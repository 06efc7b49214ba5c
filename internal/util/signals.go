package util

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// exit is replaced in tests
var exit = os.Exit

// SetupSignalHandler derives a context from parent that is cancelled on SIGINT or SIGTERM,
// so long-running waits (health polling, task polling, bulk loads) stop at their next check.
// A second signal exits with status 130.
func SetupSignalHandler(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			return
		}

		sig := <-sigCh
		logger.Warn("received second shutdown signal, forcing exit", "signal", sig.String())
		exit(130)
	}()

	return ctx, cancel
}
