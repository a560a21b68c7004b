package store

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    username   TEXT UNIQUE NOT NULL,
    password   TEXT NOT NULL,
    created_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS setup_complete (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    completed    INTEGER DEFAULT 0,
    completed_at TEXT
);

CREATE TABLE IF NOT EXISTS setup_lock (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    reason    TEXT NOT NULL,
    locked_at TEXT DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS profile (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    name     TEXT NOT NULL,
    title    TEXT NOT NULL,
    avatar   TEXT NOT NULL,
    banner   TEXT NOT NULL,
    verified INTEGER DEFAULT 0,
    bio      TEXT,
    status   TEXT
);

CREATE TABLE IF NOT EXISTS navigation (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    name          TEXT NOT NULL,
    path          TEXT NOT NULL,
    active        INTEGER DEFAULT 0,
    display_order INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS social_links (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    name     TEXT NOT NULL,
    username TEXT NOT NULL,
    url      TEXT NOT NULL,
    icon     TEXT NOT NULL,
    action   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT
);

CREATE TABLE IF NOT EXISTS project_items (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    icon       TEXT NOT NULL,
    url        TEXT NOT NULL,
    preview    TEXT,
    project_id INTEGER NOT NULL,
    FOREIGN KEY (project_id) REFERENCES projects (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS quick_links (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    url  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contact (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    button_text   TEXT NOT NULL,
    title         TEXT NOT NULL,
    submit_button TEXT NOT NULL,
    cancel_button TEXT NOT NULL,
    contact_url   TEXT
);

CREATE TABLE IF NOT EXISTS contact_fields (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    contact_id INTEGER NOT NULL,
    type       TEXT NOT NULL,
    label      TEXT NOT NULL,
    required   INTEGER DEFAULT 0,
    FOREIGN KEY (contact_id) REFERENCES contact (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS webhooks (
    id      INTEGER PRIMARY KEY AUTOINCREMENT,
    discord TEXT
);

CREATE TABLE IF NOT EXISTS owner_settings (
    id    INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT
);

CREATE TABLE IF NOT EXISTS discover (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT
);

CREATE TABLE IF NOT EXISTS discover_sections (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT,
    discover_id INTEGER NOT NULL,
    FOREIGN KEY (discover_id) REFERENCES discover (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS discover_items (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    description TEXT NOT NULL,
    image       TEXT,
    url         TEXT,
    tag         TEXT,
    section_id  INTEGER NOT NULL,
    FOREIGN KEY (section_id) REFERENCES discover_sections (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS discover_stats (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    discover_id      INTEGER NOT NULL,
    show_stats       INTEGER DEFAULT 1,
    experience_years INTEGER,
    FOREIGN KEY (discover_id) REFERENCES discover (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS discover_custom_stats (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    label    TEXT NOT NULL,
    value    TEXT NOT NULL,
    stats_id INTEGER NOT NULL,
    FOREIGN KEY (stats_id) REFERENCES discover_stats (id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS performance_settings (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    image_optimization INTEGER DEFAULT 0,
    analytics          INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS analytics_page_views (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    page_path  TEXT NOT NULL,
    visitor_id TEXT NOT NULL,
    ip_address TEXT,
    user_agent TEXT,
    referrer   TEXT,
    country    TEXT,
    timestamp  TEXT DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_page_views_path ON analytics_page_views(page_path);
CREATE INDEX IF NOT EXISTS idx_page_views_time ON analytics_page_views(timestamp);

CREATE TABLE IF NOT EXISTS analytics_visitors (
    visitor_id  TEXT PRIMARY KEY,
    first_visit TEXT DEFAULT (datetime('now')),
    last_visit  TEXT DEFAULT (datetime('now')),
    visit_count INTEGER DEFAULT 1,
    country     TEXT,
    browser     TEXT,
    os          TEXT,
    device_type TEXT
);
`

// Bootstrap creates all tables, applies pending migrations, and seeds the
// default content on a fresh installation. DDL failure is fatal to startup:
// the application cannot serve a valid document without the schema.
func (s *Store) Bootstrap(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}

	if err := NewMigrator(s).Apply(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	complete, err := s.IsSetupComplete(ctx)
	if err != nil {
		return fmt.Errorf("check setup state: %w", err)
	}
	if complete {
		// Never reseed over user content.
		return nil
	}

	if err := s.seedDefaults(ctx); err != nil {
		return fmt.Errorf("seed defaults: %w", err)
	}
	return nil
}

// IsSetupComplete reports whether the installation has completed setup.
func (s *Store) IsSetupComplete(ctx context.Context) (bool, error) {
	rows, err := QueryRows(ctx, s.DB,
		"SELECT id FROM setup_complete WHERE completed = 1 LIMIT 1")
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// IsSetupLocked reports whether setup has been permanently locked by a
// self-delete request.
func (s *Store) IsSetupLocked(ctx context.Context) (bool, error) {
	rows, err := QueryRows(ctx, s.DB, "SELECT id FROM setup_lock LIMIT 1")
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// seedDefaults fills every content table with the fixed first-boot document.
// Each table is seeded only if it is empty, so a partially-seeded database
// (crash during first boot) converges instead of duplicating rows.
func (s *Store) seedDefaults(ctx context.Context) error {
	if empty, err := s.tableEmpty(ctx, "users"); err != nil {
		return err
	} else if empty {
		// Placeholder credentials, replaced during setup completion.
		hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash default password: %w", err)
		}
		if _, err := Exec(ctx, s.DB,
			"INSERT INTO users (username, password) VALUES (?, ?)", "admin", string(hash)); err != nil {
			return err
		}
		log.Println("WARNING: default admin user created (admin/admin) - completing setup replaces it")
	}

	if empty, err := s.tableEmpty(ctx, "profile"); err != nil {
		return err
	} else if empty {
		if _, err := Exec(ctx, s.DB,
			`INSERT INTO profile (name, title, avatar, banner, verified, bio, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			"John Doe", "Full Stack Developer",
			"/images/avatar.jpg", "/images/banner.jpg",
			1, "Building things for the web", "Not currently doing anything!"); err != nil {
			return err
		}
	}

	if empty, err := s.tableEmpty(ctx, "navigation"); err != nil {
		return err
	} else if empty {
		navItems := []struct {
			name, path string
			active     int
		}{
			{"User Info", "user-info", 1},
			{"Projects", "projects", 0},
			{"Socials", "socials", 0},
			{"Discover", "discover", 0},
			{"Contact", "contact", 0},
		}
		for i, item := range navItems {
			if _, err := Exec(ctx, s.DB,
				"INSERT INTO navigation (name, path, active, display_order) VALUES (?, ?, ?, ?)",
				item.name, item.path, item.active, i+1); err != nil {
				return err
			}
		}
	}

	if empty, err := s.tableEmpty(ctx, "social_links"); err != nil {
		return err
	} else if empty {
		links := []struct {
			name, username, url, icon, action string
		}{
			{"Gmail", "johndoe@gmail.com", "mailto:johndoe@gmail.com", "email", "copy"},
			{"Facebook", "John Doe", "https://facebook.com/johndoe", "facebook", "view"},
			{"Instagram", "@johndoe", "https://instagram.com/johndoe", "instagram", "view"},
			{"YouTube", "@johndoe", "https://youtube.com/c/johndoe", "youtube", "view"},
			{"Discord", "@johndoe", "https://discord.com/users/johndoe", "discord", "view"},
			{"Spotify", "John Doe", "https://open.spotify.com/user/johndoe", "spotify", "view"},
		}
		for _, l := range links {
			if _, err := Exec(ctx, s.DB,
				"INSERT INTO social_links (name, username, url, icon, action) VALUES (?, ?, ?, ?, ?)",
				l.name, l.username, l.url, l.icon, l.action); err != nil {
				return err
			}
		}
	}

	if empty, err := s.tableEmpty(ctx, "projects"); err != nil {
		return err
	} else if empty {
		projectID, err := Insert(ctx, s.DB,
			"INSERT INTO projects (title, description) VALUES (?, ?)",
			"Projects/Work Place", "Some public projects only")
		if err != nil {
			return err
		}
		items := []struct{ name, icon, url string }{
			{"First Project", "/assets/icons/project1.png", "#"},
			{"Second Project", "/assets/icons/project2.png", "#"},
			{"Third Project", "/assets/icons/project3.png", "#"},
			{"Fourth Project", "/assets/icons/project4.png", "#"},
		}
		for _, item := range items {
			if _, err := Exec(ctx, s.DB,
				"INSERT INTO project_items (name, icon, url, project_id) VALUES (?, ?, ?, ?)",
				item.name, item.icon, item.url, projectID); err != nil {
				return err
			}
		}
	}

	if empty, err := s.tableEmpty(ctx, "quick_links"); err != nil {
		return err
	} else if empty {
		links := []struct{ name, url string }{
			{"Youtube", "https://youtube.com/c/johndoe"},
			{"Discord", "https://discord.com/users/johndoe"},
			{"Instagram", "https://instagram.com/johndoe"},
		}
		for _, l := range links {
			if _, err := Exec(ctx, s.DB,
				"INSERT INTO quick_links (name, url) VALUES (?, ?)", l.name, l.url); err != nil {
				return err
			}
		}
	}

	if empty, err := s.tableEmpty(ctx, "contact"); err != nil {
		return err
	} else if empty {
		contactID, err := Insert(ctx, s.DB,
			"INSERT INTO contact (button_text, title, submit_button, cancel_button) VALUES (?, ?, ?, ?)",
			"Contact", "Contact With Me", "Send message", "Cancel")
		if err != nil {
			return err
		}
		fields := []struct {
			ftype, label string
			required     int
		}{
			{"text", "Username", 1},
			{"text", "Discord username:", 0},
			{"email", "Email:", 1},
			{"textarea", "Message:", 1},
		}
		for i, f := range fields {
			if _, err := Exec(ctx, s.DB,
				"INSERT INTO contact_fields (contact_id, type, label, required, display_order) VALUES (?, ?, ?, ?, ?)",
				contactID, f.ftype, f.label, f.required, i); err != nil {
				return err
			}
		}
	}

	if empty, err := s.tableEmpty(ctx, "webhooks"); err != nil {
		return err
	} else if empty {
		if _, err := Exec(ctx, s.DB,
			"INSERT INTO webhooks (discord) VALUES (?)",
			"https://discord.com/api/webhooks/your-webhook-url-here"); err != nil {
			return err
		}
	}

	if empty, err := s.tableEmpty(ctx, "owner_settings"); err != nil {
		return err
	} else if empty {
		if _, err := Exec(ctx, s.DB,
			"INSERT INTO owner_settings (id, email, loading_letter, loading_text) VALUES (1, ?, ?, ?)",
			"owner@example.com", "H", "Loading..."); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) tableEmpty(ctx context.Context, table string) (bool, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count %s: %w", table, err)
	}
	return count == 0, nil
}
