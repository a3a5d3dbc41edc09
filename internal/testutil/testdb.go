package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/akarolczak/critpath/internal/db"
)

// NewTestDB opens an in-memory SQLite database with all migrations applied
// and closes it when the test finishes. An in-memory database is private to
// its connection pool, which is all most repository and service tests need.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, ":memory:")
}

// NewFileTestDB opens a migrated database file under t.TempDir. Unlike
// :memory:, a file is shared by every connection that opens it, so WAL-mode
// concurrency tests that need real reader/writer interleaving use this one.
func NewFileTestDB(t *testing.T) *sql.DB {
	t.Helper()
	return openTestDB(t, filepath.Join(t.TempDir(), "critpath_test.db"))
}

func openTestDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	database, err := db.OpenDB(dsn)
	if err != nil {
		t.Fatalf("opening test database %s: %v", dsn, err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// NewTestUoW wraps database in the SQLite unit of work the services use.
func NewTestUoW(database *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(database)
}
