package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/iav0207/fcards2-sub001/internal/platform/sqlstore"
	"github.com/jmoiron/sqlx"
)

// runMigrations executes one migration command against db. Status lines are
// written to out.
func runMigrations(ctx context.Context, db *sqlx.DB, command string, l *slog.Logger, out io.Writer) error {
	switch command {
	case "up":
		return sqlstore.Migrate(ctx, db, l)

	case "down":
		if err := sqlstore.MigrateDown(ctx, db); err != nil {
			return err
		}
		l.Info("rolled back one migration")
		return nil

	case "status":
		statuses, err := sqlstore.MigrationStatus(ctx, db)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
			}
			if _, err := fmt.Fprintf(out, "%-8d %-40s %s\n", s.Source.Version, s.Source.Path, applied); err != nil {
				return err
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown migration command %q (want up, down or status)", command)
	}
}
