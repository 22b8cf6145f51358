package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/techcorp/classified-doc-broker/internal/infra"
	"github.com/techcorp/classified-doc-broker/internal/infra/config"
	"github.com/techcorp/classified-doc-broker/internal/infra/logging"
)

func main() {
	ctx := context.Background()

	handler := logging.NewContextHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}),
	)
	slog.SetDefault(slog.New(handler))

	slog.InfoContext(ctx, "starting classified-doc-broker")

	cfg := config.MustLoad()

	app, err := infra.NewApp(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		slog.ErrorContext(ctx, "application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.InfoContext(ctx, "classified-doc-broker stopped")
}
