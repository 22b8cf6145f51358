package infra

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// Run starts the HTTP server and janitor scheduler, then blocks until a
// shutdown signal arrives or the server fails.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	a.scheduler.Start(ctx)

	errChan := make(chan error, 1)
	go func() {
		if err := a.httpServer.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		slog.InfoContext(ctx, "received shutdown signal", slog.String("signal", sig.String()))
		cancel()
	case err := <-errChan:
		slog.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
		return err
	}

	a.cleanup()
	return nil
}

// cleanup stops the scheduler and flushes the signed registry file (spec.md
// §4.3). The employee connection mapping is not flushed here; its store
// writes the file on every change.
func (a *App) cleanup() {
	ctx := context.Background()
	slog.InfoContext(ctx, "cleaning up resources")

	a.scheduler.Stop()

	if err := a.registry.Persist(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to persist registry on shutdown", slog.String("error", err.Error()))
	}

	slog.InfoContext(ctx, "cleanup complete")
}
