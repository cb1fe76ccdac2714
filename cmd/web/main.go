package main

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"ledgerlens/internal/app"
	"ledgerlens/internal/config"
	"ledgerlens/internal/infrastructure"
	"ledgerlens/pkg/contracts"
)

// Embedded upload page
//
//go:embed ui/*
var uiFiles embed.FS

func main() {
	// A missing .env is normal outside development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	logger.Info("Starting", slog.String("build", contracts.GetVersionInfo().String()))

	uiFS, err := uiFilesystem()
	if err != nil {
		logger.Warn("UI embedding failed, serving API only", slog.String("error", err.Error()))
	}

	application, err := app.NewApplication(cfg, logger, uiFS)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := application.Run(context.Background()); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func uiFilesystem() (fs.FS, error) {
	sub, err := fs.Sub(uiFiles, "ui")
	if err != nil {
		return nil, err
	}
	if _, err := fs.Stat(sub, "index.html"); err != nil {
		return nil, err
	}
	return sub, nil
}
