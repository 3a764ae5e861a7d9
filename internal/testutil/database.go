package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/getcalls/website/internal/database"
	"github.com/getcalls/website/internal/migrate"
)

// NewDB opens a migrated sqlite database in a temp dir and closes it when
// the test ends.
func NewDB(t *testing.T) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"), DiscardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrate.NewMigrator(db, DiscardLogger()).Up(ctx))
	return db
}
