package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/Simplici0/printledger/internal/db"
	"github.com/Simplici0/printledger/internal/migrations"
)

// OpenDB opens a migrated SQLite database in a per-test temp directory.
// The database is closed on test cleanup.
func OpenDB(t testing.TB) *sql.DB {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(context.Background(), database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return database
}
