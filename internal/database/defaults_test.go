package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("migrations")
	require.NoError(t, err)
	require.NoError(t, RunMigrations(dbPath, migrations))

	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, SeedDefaults(ctx, db))
	require.NoError(t, SeedDefaults(ctx, db))

	var collections, requests int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM collections`).Scan(&collections))
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM requests`).Scan(&requests))
	require.Equal(t, 1, collections)
	require.Equal(t, 2, requests)

	// Reseeding an emptied database reproduces the same stable ids.
	var firstID string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT id FROM collections`).Scan(&firstID))
	_, err = db.ExecContext(ctx, `DELETE FROM requests`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM collections`)
	require.NoError(t, err)
	require.NoError(t, SeedDefaults(ctx, db))

	var secondID string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT id FROM collections`).Scan(&secondID))
	require.Equal(t, firstID, secondID)
}

func TestNowMatchesSqliteResolution(t *testing.T) {
	t.Parallel()

	now := Now()
	require.Equal(t, time.UTC, now.Location())
	require.Zero(t, now.Nanosecond())
}
