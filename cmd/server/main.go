// Package main implements the entry point of the fcards backend: a local
// HTTP API serving flashcards, practice sessions and translation evaluation
// to the desktop renderer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/platform/sqlstore"
	"github.com/joho/godotenv"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	// A missing .env is normal; keys may come from the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *migrateCmd); err != nil {
		slog.Error("fcards server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration, opens the database and either executes a
// migration command or serves the API until ctx is cancelled.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		slog.String("host", cfg.Server.Host),
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("database_driver", cfg.Database.Driver),
		slog.String("primary_provider", cfg.Translation.PrimaryProvider),
		slog.Any("configured_providers", cfg.Providers.Configured()))

	db, err := sqlstore.Open(ctx, cfg.Database, l)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			l.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}()

	if migrateCmd != "" {
		return runMigrations(ctx, db, migrateCmd, l, os.Stdout)
	}

	if err := sqlstore.Migrate(ctx, db, l); err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, l, db)
	if err != nil {
		return err
	}
	return app.Run(ctx)
}
