package seed

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Simplici0/printledger/internal/auth"
	"github.com/Simplici0/printledger/internal/settings"
	"github.com/Simplici0/printledger/internal/testutil"
)

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	database := testutil.OpenDB(t)

	cfg := Config{
		AdminEmail:    "admin@printledger.local",
		AdminPassword: "12345",
	}

	for i := 0; i < 10; i++ {
		stats, err := Run(ctx, database, cfg)
		if err != nil {
			t.Fatalf("run seed (iteration=%d): %v", i, err)
		}
		if i == 0 {
			if stats.Inserts != 4 {
				t.Fatalf("expected 4 inserts in first run, got %d", stats.Inserts)
			}
			continue
		}
		if stats.Inserts != 0 {
			t.Fatalf("expected 0 inserts in iteration %d, got %d", i, stats.Inserts)
		}
	}

	assertCount(t, database, `SELECT COUNT(*) FROM users WHERE email = ?`, "admin@printledger.local", 1)
	assertCount(t, database, `SELECT COUNT(*) FROM settings`, nil, 3)

	got, err := settings.NewStore(database).Get(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if got != settings.Defaults {
		t.Fatalf("expected default settings, got %+v", got)
	}

	ok, err := auth.NewService(database, "secret").ValidateCredentials(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		t.Fatalf("validate admin credentials: %v", err)
	}
	if !ok {
		t.Fatalf("expected admin hash to match password")
	}
}

func TestRunWithoutAdminSeedsSettingsOnly(t *testing.T) {
	t.Parallel()

	database := testutil.OpenDB(t)

	stats, err := Run(context.Background(), database, Config{})
	if err != nil {
		t.Fatalf("run seed: %v", err)
	}
	if stats.Inserts != 3 {
		t.Fatalf("expected 3 inserts, got %d", stats.Inserts)
	}
	assertCount(t, database, `SELECT COUNT(*) FROM users`, nil, 0)
}

func assertCount(t *testing.T, database *sql.DB, query string, args any, expected int) {
	t.Helper()

	var count int
	var err error
	switch v := args.(type) {
	case nil:
		err = database.QueryRow(query).Scan(&count)
	case []any:
		err = database.QueryRow(query, v...).Scan(&count)
	default:
		err = database.QueryRow(query, v).Scan(&count)
	}
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != expected {
		t.Fatalf("expected count %d, got %d", expected, count)
	}
}
