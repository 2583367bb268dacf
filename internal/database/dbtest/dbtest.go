// Package dbtest opens throwaway in-memory databases for package tests.
package dbtest

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"finance-ledger-go/internal/config"
	"finance-ledger-go/internal/database"
)

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Config is a sqlite-backed configuration suitable for tests.
func Config() *config.Config {
	return &config.Config{
		DBDriver:     database.DriverSQLite,
		DBPath:       ":memory:",
		DBLogLevel:   "silent",
		JWTSecret:    "test-secret",
		StoreTimeout: 0,
		LockRetries:  3,
	}
}

// Open returns a migrated in-memory database closed when the test ends.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.Open(Config(), Logger())
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.Migrate(db), "failed to migrate test database")
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
