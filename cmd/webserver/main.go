package main

import (
	"context"
	"log/slog"
	"os"

	"idacli/internal/app"
	"idacli/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	application, err := app.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		slog.Error("Application exited with error", "error", err)
		os.Exit(1)
	}
}
