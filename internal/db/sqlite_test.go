package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqlitemigrations "crowdfund-escrow/db/migrations/sqlite"
	"crowdfund-escrow/internal/config/configs"
)

func TestOpenSQLiteMigratesOnce(t *testing.T) {
	ctx := context.Background()
	cfg := configs.SQLite{Path: filepath.Join(t.TempDir(), "ledger.db")}

	first, err := OpenSQLite(ctx, cfg)
	require.NoError(t, err)
	_, err = first.ExecContext(ctx, `INSERT INTO campaigns
        (id, creator, admin, token, goal, deadline, status, created_at, updated_at)
        VALUES ('c1', 'creator', 'creator', 'usdc', 100, 1, 'active', 0, 0)`)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := OpenSQLite(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	var (
		version int
		dirty   bool
	)
	require.NoError(t, second.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations`).Scan(&version, &dirty))
	assert.Equal(t, sqlitemigrations.Version, version)
	assert.False(t, dirty)

	var n int
	require.NoError(t, second.QueryRowContext(ctx, `SELECT COUNT(*) FROM campaigns`).Scan(&n))
	assert.Equal(t, 1, n, "reopening keeps existing rows")
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	_, err := OpenSQLite(context.Background(), configs.SQLite{Path: "  "})
	require.Error(t, err)
}
