// Package seedtest opens throwaway SQLite databases loaded with the
// placeholder data, for tests in other packages.
package seedtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/invoice-dashboard/internal/database"
	"github.com/iliyamo/invoice-dashboard/internal/seed"
)

// Open returns a seeded database in t's temp dir, closed on cleanup.
func Open(t *testing.T) *database.DB {
	t.Helper()
	db := OpenEmpty(t)
	require.NoError(t, seed.Run(context.Background(), db, bcrypt.MinCost))
	return db
}

// OpenEmpty returns an unseeded database in t's temp dir.
func OpenEmpty(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), database.Options{
		Driver: database.DriverSQLite,
		DSN:    "file:" + filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
