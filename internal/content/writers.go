package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"linkbio-backend/internal/store"
)

// UpdateProfile updates the singleton profile row in place.
func (r *Repository) UpdateProfile(ctx context.Context, p *Profile) error {
	verified := 0
	if p.Verified {
		verified = 1
	}
	_, err := store.Exec(ctx, r.store.DB,
		`UPDATE profile SET name = ?, title = ?, avatar = ?, banner = ?, verified = ?, bio = ?, status = ?
		 WHERE id = ?`,
		p.Name, p.Title, p.Avatar, p.Banner, verified, p.Bio, p.Status, p.ID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// UpsertSocialLink inserts a new link when ID is zero, otherwise updates the
// existing row by id. Duplicate (name, url) pairs are allowed. Returns the
// link's id (newly assigned on insert).
func (r *Repository) UpsertSocialLink(ctx context.Context, link *SocialLink) (int, error) {
	if link.ID == 0 {
		id, err := store.Insert(ctx, r.store.DB,
			"INSERT INTO social_links (name, username, url, icon, action) VALUES (?, ?, ?, ?, ?)",
			link.Name, link.Username, link.URL, link.Icon, link.Action)
		if err != nil {
			return 0, fmt.Errorf("insert social link: %w", err)
		}
		return int(id), nil
	}

	_, err := store.Exec(ctx, r.store.DB,
		"UPDATE social_links SET name = ?, username = ?, url = ?, icon = ?, action = ? WHERE id = ?",
		link.Name, link.Username, link.URL, link.Icon, link.Action, link.ID)
	if err != nil {
		return 0, fmt.Errorf("update social link: %w", err)
	}
	return link.ID, nil
}

// DeleteSocialLink removes a social link by id.
func (r *Repository) DeleteSocialLink(ctx context.Context, id int) error {
	n, err := store.Exec(ctx, r.store.DB, "DELETE FROM social_links WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete social link: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// UpdateNavigation persists the caller's ordering: display_order is assigned
// from array position inside one transaction. Any failing row update rolls
// back the whole reorder.
func (r *Repository) UpdateNavigation(ctx context.Context, items []NavigationItem) error {
	return r.store.WithTx(ctx, func(tx *sql.Tx) error {
		for i, item := range items {
			active := 0
			if item.Active {
				active = 1
			}
			_, err := store.Exec(ctx, tx,
				"UPDATE navigation SET name = ?, path = ?, active = ?, display_order = ? WHERE id = ?",
				item.Name, item.Path, active, i+1, item.ID)
			if err != nil {
				return fmt.Errorf("update navigation item %d: %w", item.ID, err)
			}
		}
		return nil
	})
}

// UpdateProject updates the section title/description in place and replaces
// all project items with the supplied set. Item ids are not preserved.
func (r *Repository) UpdateProject(ctx context.Context, p *Projects) error {
	return r.store.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := store.Exec(ctx, tx,
			"UPDATE projects SET title = ?, description = ? WHERE id = ?",
			p.Title, p.Description, p.ID)
		if err != nil {
			return fmt.Errorf("update project: %w", err)
		}

		if _, err := store.Exec(ctx, tx,
			"DELETE FROM project_items WHERE project_id = ?", p.ID); err != nil {
			return fmt.Errorf("clear project items: %w", err)
		}
		for _, item := range p.Items {
			_, err := store.Exec(ctx, tx,
				"INSERT INTO project_items (name, icon, url, preview, project_id) VALUES (?, ?, ?, ?, ?)",
				item.Name, item.Icon, item.URL, nullable(item.Preview), p.ID)
			if err != nil {
				return fmt.Errorf("insert project item: %w", err)
			}
		}
		return nil
	})
}

// UpdateQuickLinks replaces all quick links with the supplied set.
func (r *Repository) UpdateQuickLinks(ctx context.Context, links []QuickLink) error {
	return r.store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := store.Exec(ctx, tx, "DELETE FROM quick_links"); err != nil {
			return fmt.Errorf("clear quick links: %w", err)
		}
		for _, link := range links {
			if _, err := store.Exec(ctx, tx,
				"INSERT INTO quick_links (name, url) VALUES (?, ?)", link.Name, link.URL); err != nil {
				return fmt.Errorf("insert quick link: %w", err)
			}
		}
		return nil
	})
}

// UpdateContactURL sets the external contact URL (empty clears it, restoring
// the form).
func (r *Repository) UpdateContactURL(ctx context.Context, contactURL string) error {
	_, err := store.Exec(ctx, r.store.DB,
		"UPDATE contact SET contact_url = ? WHERE id = 1", contactURL)
	if err != nil {
		return fmt.Errorf("update contact url: %w", err)
	}
	return nil
}

// UpdateFormFields replaces the contact form fields; display_order follows
// array position.
func (r *Repository) UpdateFormFields(ctx context.Context, fields []FormField) error {
	return r.store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := store.Exec(ctx, tx, "DELETE FROM contact_fields"); err != nil {
			return fmt.Errorf("clear form fields: %w", err)
		}
		for i, f := range fields {
			required := 0
			if f.Required {
				required = 1
			}
			_, err := store.Exec(ctx, tx,
				"INSERT INTO contact_fields (contact_id, type, label, required, display_order) VALUES (1, ?, ?, ?, ?)",
				f.Type, f.Label, required, i)
			if err != nil {
				return fmt.Errorf("insert form field: %w", err)
			}
		}
		return nil
	})
}

// UpdateWebhook sets the Discord webhook URL.
func (r *Repository) UpdateWebhook(ctx context.Context, discord string) error {
	_, err := store.Exec(ctx, r.store.DB,
		"UPDATE webhooks SET discord = ? WHERE id = 1", discord)
	if err != nil {
		return fmt.Errorf("update webhook: %w", err)
	}
	return nil
}

// UpdateOwnerEmail sets the owner notification address, creating the settings
// row if it does not exist yet.
func (r *Repository) UpdateOwnerEmail(ctx context.Context, email string) error {
	return r.upsertOwnerSetting(ctx, "email", email)
}

// UpdateLoadingLetter sets the loading-screen glyph.
func (r *Repository) UpdateLoadingLetter(ctx context.Context, letter string) error {
	return r.upsertOwnerSetting(ctx, "loading_letter", letter)
}

// UpdateLoadingText sets the loading-screen text.
func (r *Repository) UpdateLoadingText(ctx context.Context, text string) error {
	return r.upsertOwnerSetting(ctx, "loading_text", text)
}

func (r *Repository) upsertOwnerSetting(ctx context.Context, column, value string) error {
	_, err := store.QueryRow(ctx, r.store.DB, "SELECT id FROM owner_settings WHERE id = 1")
	if errors.Is(err, store.ErrNotFound) {
		_, err = store.Exec(ctx, r.store.DB,
			fmt.Sprintf("INSERT INTO owner_settings (id, %s) VALUES (1, ?)", column), value)
		if err != nil {
			return fmt.Errorf("insert owner settings: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read owner settings: %w", err)
	}

	_, err = store.Exec(ctx, r.store.DB,
		fmt.Sprintf("UPDATE owner_settings SET %s = ? WHERE id = 1", column), value)
	if err != nil {
		return fmt.Errorf("update owner settings: %w", err)
	}
	return nil
}

// UpdateDiscover replaces the whole discover tree: the root row is updated or
// created, every existing section/item/stat is deleted (children before
// parents), and the supplied tree is reinserted. Child ids are not preserved
// across saves.
func (r *Repository) UpdateDiscover(ctx context.Context, d *Discover) error {
	return r.store.WithTx(ctx, func(tx *sql.Tx) error {
		var discoverID int
		row, err := store.QueryRow(ctx, tx, "SELECT id FROM discover LIMIT 1")
		switch {
		case errors.Is(err, store.ErrNotFound):
			id, err := store.Insert(ctx, tx,
				"INSERT INTO discover (title, description) VALUES (?, ?)",
				d.Title, nullable(d.Description))
			if err != nil {
				return fmt.Errorf("insert discover: %w", err)
			}
			discoverID = int(id)
		case err != nil:
			return fmt.Errorf("read discover: %w", err)
		default:
			discoverID = store.AsInt(row["id"])
			_, err := store.Exec(ctx, tx,
				"UPDATE discover SET title = ?, description = ? WHERE id = ?",
				d.Title, nullable(d.Description), discoverID)
			if err != nil {
				return fmt.Errorf("update discover: %w", err)
			}
		}

		// Children before parents; no blanket cascade is relied upon.
		sectionRows, err := store.QueryRows(ctx, tx,
			"SELECT id FROM discover_sections WHERE discover_id = ?", discoverID)
		if err != nil {
			return fmt.Errorf("list discover sections: %w", err)
		}
		for _, s := range sectionRows {
			if _, err := store.Exec(ctx, tx,
				"DELETE FROM discover_items WHERE section_id = ?", store.AsInt(s["id"])); err != nil {
				return fmt.Errorf("delete discover items: %w", err)
			}
		}
		if _, err := store.Exec(ctx, tx,
			"DELETE FROM discover_sections WHERE discover_id = ?", discoverID); err != nil {
			return fmt.Errorf("delete discover sections: %w", err)
		}

		for _, section := range d.Sections {
			sectionID, err := store.Insert(ctx, tx,
				"INSERT INTO discover_sections (title, description, discover_id) VALUES (?, ?, ?)",
				section.Title, nullable(section.Description), discoverID)
			if err != nil {
				return fmt.Errorf("insert discover section: %w", err)
			}
			for _, item := range section.Items {
				_, err := store.Exec(ctx, tx,
					"INSERT INTO discover_items (title, description, image, url, tag, section_id) VALUES (?, ?, ?, ?, ?, ?)",
					item.Title, item.Description, nullable(item.Image), nullable(item.URL), nullable(item.Tag), sectionID)
				if err != nil {
					return fmt.Errorf("insert discover item: %w", err)
				}
			}
		}

		if d.Stats != nil {
			statsRow, err := store.QueryRow(ctx, tx,
				"SELECT id FROM discover_stats WHERE discover_id = ?", discoverID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("read discover stats: %w", err)
			}
			if err == nil {
				statsID := store.AsInt(statsRow["id"])
				if _, err := store.Exec(ctx, tx,
					"DELETE FROM discover_custom_stats WHERE stats_id = ?", statsID); err != nil {
					return fmt.Errorf("delete custom stats: %w", err)
				}
				if _, err := store.Exec(ctx, tx,
					"DELETE FROM discover_stats WHERE id = ?", statsID); err != nil {
					return fmt.Errorf("delete discover stats: %w", err)
				}
			}

			showStats := 0
			if d.Stats.ShowStats {
				showStats = 1
			}
			statsID, err := store.Insert(ctx, tx,
				"INSERT INTO discover_stats (discover_id, show_stats, experience_years) VALUES (?, ?, ?)",
				discoverID, showStats, d.Stats.ExperienceYears)
			if err != nil {
				return fmt.Errorf("insert discover stats: %w", err)
			}
			for _, stat := range d.Stats.CustomStats {
				_, err := store.Exec(ctx, tx,
					"INSERT INTO discover_custom_stats (label, value, stats_id) VALUES (?, ?, ?)",
					stat.Label, stat.Value, statsID)
				if err != nil {
					return fmt.Errorf("insert custom stat: %w", err)
				}
			}
		}

		return nil
	})
}

// UpdatePerformanceSettings updates the singleton row, creating it on first
// write.
func (r *Repository) UpdatePerformanceSettings(ctx context.Context, p *PerformanceSettings) error {
	imageOpt, analytics := 0, 0
	if p.ImageOptimization {
		imageOpt = 1
	}
	if p.Analytics {
		analytics = 1
	}

	row, err := store.QueryRow(ctx, r.store.DB, "SELECT id FROM performance_settings LIMIT 1")
	if errors.Is(err, store.ErrNotFound) {
		_, err = store.Exec(ctx, r.store.DB,
			"INSERT INTO performance_settings (image_optimization, analytics) VALUES (?, ?)",
			imageOpt, analytics)
		if err != nil {
			return fmt.Errorf("insert performance settings: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("read performance settings: %w", err)
	}

	_, err = store.Exec(ctx, r.store.DB,
		"UPDATE performance_settings SET image_optimization = ?, analytics = ? WHERE id = ?",
		imageOpt, analytics, store.AsInt(row["id"]))
	if err != nil {
		return fmt.Errorf("update performance settings: %w", err)
	}
	return nil
}

// UpdatePassword stores a new bcrypt hash for the given user.
func (r *Repository) UpdatePassword(ctx context.Context, userID int, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = store.Exec(ctx, r.store.DB,
		"UPDATE users SET password = ? WHERE id = ?", string(hash), userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// nullable maps "" to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
