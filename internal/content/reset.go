package content

import (
	"context"
	"database/sql"
	"fmt"

	"linkbio-backend/internal/store"
)

// resetOrder lists every content table, children before parents, so the wipe
// never trips a foreign key.
var resetOrder = []string{
	"discover_custom_stats",
	"discover_stats",
	"discover_items",
	"discover_sections",
	"discover",
	"project_items",
	"projects",
	"contact_fields",
	"contact",
	"quick_links",
	"social_links",
	"navigation",
	"profile",
	"webhooks",
	"owner_settings",
	"performance_settings",
	"analytics_page_views",
	"analytics_visitors",
	"users",
	"setup_complete",
}

// Reset wipes every content, analytics and account row in one transaction and
// reseeds the placeholder document from DefaultConfig. The admin account and
// the setup marker are removed too, so the instance returns to needs-setup.
func (r *Repository) Reset(ctx context.Context) error {
	return r.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range resetOrder {
			if _, err := store.Exec(ctx, tx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("wipe %s: %w", table, err)
			}
		}
		return seedConfig(ctx, tx, DefaultConfig())
	})
}

// seedConfig inserts a full document into empty tables.
func seedConfig(ctx context.Context, tx *sql.Tx, cfg *Config) error {
	verified := 0
	if cfg.Profile.Verified {
		verified = 1
	}
	_, err := store.Exec(ctx, tx,
		"INSERT INTO profile (name, title, avatar, banner, verified, bio, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		cfg.Profile.Name, cfg.Profile.Title, cfg.Profile.Avatar, cfg.Profile.Banner,
		verified, cfg.Profile.Bio, cfg.Profile.Status)
	if err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}

	for i, item := range cfg.Navigation {
		active := 0
		if item.Active {
			active = 1
		}
		_, err := store.Exec(ctx, tx,
			"INSERT INTO navigation (name, path, active, display_order) VALUES (?, ?, ?, ?)",
			item.Name, item.Path, active, i+1)
		if err != nil {
			return fmt.Errorf("seed navigation: %w", err)
		}
	}

	for _, link := range cfg.SocialLinks {
		_, err := store.Exec(ctx, tx,
			"INSERT INTO social_links (name, username, url, icon, action) VALUES (?, ?, ?, ?, ?)",
			link.Name, link.Username, link.URL, link.Icon, link.Action)
		if err != nil {
			return fmt.Errorf("seed social links: %w", err)
		}
	}

	projectID, err := store.Insert(ctx, tx,
		"INSERT INTO projects (title, description) VALUES (?, ?)",
		cfg.Projects.Title, cfg.Projects.Description)
	if err != nil {
		return fmt.Errorf("seed projects: %w", err)
	}
	for _, item := range cfg.Projects.Items {
		_, err := store.Exec(ctx, tx,
			"INSERT INTO project_items (name, icon, url, preview, project_id) VALUES (?, ?, ?, ?, ?)",
			item.Name, item.Icon, item.URL, nullable(item.Preview), projectID)
		if err != nil {
			return fmt.Errorf("seed project items: %w", err)
		}
	}

	for _, link := range cfg.QuickLinks {
		_, err := store.Exec(ctx, tx,
			"INSERT INTO quick_links (name, url) VALUES (?, ?)", link.Name, link.URL)
		if err != nil {
			return fmt.Errorf("seed quick links: %w", err)
		}
	}

	if _, err := store.Exec(ctx, tx,
		"INSERT INTO contact (id, button_text, title, submit_button, cancel_button, contact_url) VALUES (1, ?, ?, ?, ?, ?)",
		cfg.Contact.ButtonText, cfg.Contact.Title, cfg.Contact.SubmitButton,
		cfg.Contact.CancelButton, cfg.Contact.ContactURL); err != nil {
		return fmt.Errorf("seed contact: %w", err)
	}
	for i, f := range cfg.Contact.FormFields {
		required := 0
		if f.Required {
			required = 1
		}
		_, err := store.Exec(ctx, tx,
			"INSERT INTO contact_fields (contact_id, type, label, required, display_order) VALUES (1, ?, ?, ?, ?)",
			f.Type, f.Label, required, i)
		if err != nil {
			return fmt.Errorf("seed contact fields: %w", err)
		}
	}

	if _, err := store.Exec(ctx, tx,
		"INSERT INTO webhooks (id, discord) VALUES (1, ?)", cfg.Webhooks.Discord); err != nil {
		return fmt.Errorf("seed webhooks: %w", err)
	}

	_, err = store.Exec(ctx, tx,
		"INSERT INTO owner_settings (id, email, loading_letter, loading_text) VALUES (1, ?, ?, ?)",
		cfg.OwnerSettings.Email, cfg.OwnerSettings.LoadingLetter, cfg.OwnerSettings.LoadingText)
	if err != nil {
		return fmt.Errorf("seed owner settings: %w", err)
	}

	return nil
}
