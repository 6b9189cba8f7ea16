package sqlstore_test

import (
	"context"
	"testing"

	"github.com/iav0207/fcards2-sub001/internal/config"
	"github.com/iav0207/fcards2-sub001/internal/platform/sqlstore"
	"github.com/iav0207/fcards2-sub001/internal/testutils"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := sqlstore.Open(context.Background(), config.DatabaseConfig{Driver: "mysql", DSN: "x"}, nil)
	assert.Error(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	t.Parallel()
	db := testutils.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, sqlstore.Migrate(ctx, db, testutils.QuietLogger()))

	statuses, err := sqlstore.MigrationStatus(ctx, db)
	require.NoError(t, err)
	require.NotEmpty(t, statuses)
	for _, s := range statuses {
		assert.Equal(t, goose.StateApplied, s.State, "migration %d should be applied", s.Source.Version)
	}
}

func TestMigrateDown(t *testing.T) {
	t.Parallel()
	db := testutils.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, sqlstore.MigrateDown(ctx, db))

	var n int
	err := db.Get(&n, `SELECT COUNT(*) FROM practice_sessions`)
	assert.Error(t, err, "sessions table should be dropped")

	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM flashcards`))
	assert.Equal(t, 0, n)
}

func TestForeignKeysEnforced(t *testing.T) {
	t.Parallel()
	db := testutils.NewTestDB(t)

	_, err := db.Exec(`INSERT INTO flashcard_tags (card_id, tag, position) VALUES ('missing', 'x', 0)`)
	assert.Error(t, err)
}
