package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// Migration is a single schema change applied once at startup. Migrations are
// ordered; each records its name in schema_migrations after success.
type Migration struct {
	Name  string
	Apply func(ctx context.Context, db *sql.DB) error
}

// migrations is the ordered list of schema changes introduced after the
// initial release. Columns that older databases lack are added here, so the
// read path never has to self-heal per request.
var migrations = []Migration{
	{
		Name:  "owner_settings_add_loading_letter",
		Apply: addColumn("owner_settings", "loading_letter", "TEXT DEFAULT 'H'"),
	},
	{
		Name:  "owner_settings_add_loading_text",
		Apply: addColumn("owner_settings", "loading_text", "TEXT DEFAULT 'Loading...'"),
	},
	{
		Name:  "contact_fields_add_display_order",
		Apply: addColumn("contact_fields", "display_order", "INTEGER DEFAULT 0"),
	},
	{
		Name:  "project_items_add_preview",
		Apply: addColumn("project_items", "preview", "TEXT"),
	},
}

type Migrator struct {
	store *Store
}

func NewMigrator(store *Store) *Migrator {
	return &Migrator{store: store}
}

// Apply runs every pending migration in order. A failure aborts the run and
// leaves later migrations unapplied.
func (m *Migrator) Apply(ctx context.Context) error {
	if _, err := m.store.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
		    name       TEXT PRIMARY KEY,
		    applied_at TEXT DEFAULT (datetime('now'))
		)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	for _, mig := range migrations {
		applied, err := m.isApplied(ctx, mig.Name)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", mig.Name, err)
		}
		if applied {
			continue
		}

		if err := mig.Apply(ctx, m.store.DB); err != nil {
			return fmt.Errorf("migration %s: %w", mig.Name, err)
		}
		if _, err := Exec(ctx, m.store.DB,
			"INSERT INTO schema_migrations (name) VALUES (?)", mig.Name); err != nil {
			return fmt.Errorf("record migration %s: %w", mig.Name, err)
		}
		log.Printf("Applied migration %s", mig.Name)
	}
	return nil
}

func (m *Migrator) isApplied(ctx context.Context, name string) (bool, error) {
	var found string
	err := m.store.DB.QueryRowContext(ctx,
		"SELECT name FROM schema_migrations WHERE name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// addColumn returns a migration step that adds a column if the table does not
// already have it. Idempotent so that databases created with the full current
// schema pass through unchanged.
func addColumn(table, column, definition string) func(ctx context.Context, db *sql.DB) error {
	return func(ctx context.Context, db *sql.DB) error {
		has, err := HasColumn(ctx, db, table, column)
		if err != nil {
			return err
		}
		if has {
			return nil
		}
		_, err = db.ExecContext(ctx,
			fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
		if err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, column, err)
		}
		return nil
	}
}

// HasColumn probes for a column via PRAGMA table_info.
func HasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, colType string
		var notNull int
		var dfltValue any
		var pk int
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
