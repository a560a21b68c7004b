package store

import (
	"context"
	"database/sql"
	"testing"

	"linkbio-backend/internal/config"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(context.Background(), config.DatabaseConfig{
		Path: t.TempDir(),
		Name: "test",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestBootstrapSeedsOnce(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	rows, err := QueryRows(ctx, s.DB, "SELECT id FROM navigation")
	if err != nil {
		t.Fatalf("query navigation: %v", err)
	}
	seeded := len(rows)
	if seeded == 0 {
		t.Fatal("expected seeded navigation rows")
	}

	// A second bootstrap must not duplicate the seed.
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	rows, err = QueryRows(ctx, s.DB, "SELECT id FROM navigation")
	if err != nil {
		t.Fatalf("query navigation: %v", err)
	}
	if len(rows) != seeded {
		t.Errorf("navigation rows = %d after rebootstrap, want %d", len(rows), seeded)
	}
}

func TestBootstrapSeedsDefaultAdmin(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	rows, err := QueryRows(ctx, s.DB, "SELECT username FROM users")
	if err != nil {
		t.Fatalf("query users: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("users = %d, want 1", len(rows))
	}
	if AsString(rows[0]["username"]) != "admin" {
		t.Errorf("username = %q, want admin", AsString(rows[0]["username"]))
	}

	complete, err := s.IsSetupComplete(ctx)
	if err != nil {
		t.Fatalf("setup check: %v", err)
	}
	if complete {
		t.Error("fresh instance should report setup incomplete")
	}
}

func TestMigratorUpgradesLegacySchema(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	// A database from before the loading-screen and ordering columns existed.
	legacy := `
	CREATE TABLE owner_settings (id INTEGER PRIMARY KEY AUTOINCREMENT, email TEXT);
	CREATE TABLE contact_fields (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_id INTEGER NOT NULL, type TEXT NOT NULL, label TEXT NOT NULL, required INTEGER DEFAULT 0
	);
	CREATE TABLE project_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL, icon TEXT NOT NULL, url TEXT NOT NULL, project_id INTEGER NOT NULL
	);
	INSERT INTO owner_settings (email) VALUES ('old@example.com');
	`
	if _, err := s.DB.ExecContext(ctx, legacy); err != nil {
		t.Fatalf("create legacy schema: %v", err)
	}

	if err := NewMigrator(s).Apply(ctx); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	for _, probe := range []struct{ table, column string }{
		{"owner_settings", "loading_letter"},
		{"owner_settings", "loading_text"},
		{"contact_fields", "display_order"},
		{"project_items", "preview"},
	} {
		has, err := HasColumn(ctx, s.DB, probe.table, probe.column)
		if err != nil {
			t.Fatalf("check %s.%s: %v", probe.table, probe.column, err)
		}
		if !has {
			t.Errorf("missing column %s.%s after migration", probe.table, probe.column)
		}
	}

	// Pre-existing rows pick up the column defaults.
	row, err := QueryRow(ctx, s.DB, "SELECT loading_letter, loading_text FROM owner_settings")
	if err != nil {
		t.Fatalf("read owner settings: %v", err)
	}
	if AsString(row["loading_letter"]) != "H" {
		t.Errorf("loading_letter = %q, want H", AsString(row["loading_letter"]))
	}
	if AsString(row["loading_text"]) != "Loading..." {
		t.Errorf("loading_text = %q, want Loading...", AsString(row["loading_text"]))
	}

	// Reapplying is a no-op.
	if err := NewMigrator(s).Apply(ctx); err != nil {
		t.Fatalf("reapply migrations: %v", err)
	}
}

func TestQueryRowsPreservesTimestampShapedText(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	// A user value that happens to look like a timestamp must come back
	// byte-for-byte, not reparsed and reformatted.
	for _, status := range []string{"2025-01-02 03:04:05", "2025-01-02T03:04:05Z"} {
		if _, err := Exec(ctx, s.DB, "UPDATE profile SET status = ? WHERE id = 1", status); err != nil {
			t.Fatalf("update status: %v", err)
		}
		row, err := QueryRow(ctx, s.DB, "SELECT status FROM profile WHERE id = 1")
		if err != nil {
			t.Fatalf("read profile: %v", err)
		}
		if got := AsString(row["status"]); got != status {
			t.Errorf("status = %q, want %q", got, status)
		}
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	before, _ := QueryRows(ctx, s.DB, "SELECT id FROM quick_links")

	errBoom := errBoomErr{}
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := Exec(ctx, tx, "DELETE FROM quick_links"); err != nil {
			return err
		}
		return errBoom
	})
	if err == nil {
		t.Fatal("expected error from tx func")
	}

	after, _ := QueryRows(ctx, s.DB, "SELECT id FROM quick_links")
	if len(after) != len(before) {
		t.Errorf("quick_links = %d after rollback, want %d", len(after), len(before))
	}
}

type errBoomErr struct{}

func (errBoomErr) Error() string { return "boom" }
