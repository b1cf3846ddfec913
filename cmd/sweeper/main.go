package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vancomm/sweeper/internal/app"
	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/database"
	"github.com/vancomm/sweeper/internal/logging"
	"github.com/vancomm/sweeper/internal/mines"
)

func main() {
	development := config.Development()
	level, err := config.LogLevel()
	logger := logging.New(os.Stderr, development, level)
	if err != nil {
		logger.Error("failed to read log level", slog.Any("error", err))
		os.Exit(1)
	}

	err = logging.SetupEngine(mines.Log, development, level, logging.RotateConfig{
		Filename:   config.LogFile(),
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 7,
	})
	if err != nil {
		logger.Error("failed to set up engine log", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := app.New(logger, database.Migrations)
	if err := a.Start(ctx); err != nil {
		logger.Error("exit reason", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
