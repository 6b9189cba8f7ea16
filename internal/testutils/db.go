package testutils

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/platform/sqlstore"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// NewTestDB opens a private in-memory SQLite database with all migrations
// applied. The database is closed when the test finishes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: sqlstore.DriverSQLite, DSN: ":memory:"}

	db, err := sqlstore.Open(ctx, cfg, QuietLogger())
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlstore.Migrate(ctx, db, QuietLogger()), "failed to migrate test database")
	return db
}

// QuietLogger returns a logger that discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
