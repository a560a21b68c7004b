package content

import (
	"context"
	"errors"
	"fmt"
	"log"

	"linkbio-backend/internal/store"
)

// Repository reads and writes the configuration document. Every read goes to
// the store; there is no caching layer.
type Repository struct {
	store *store.Store
}

func NewRepository(s *store.Store) *Repository {
	return &Repository{store: s}
}

// Store exposes the underlying store for collaborators that need raw access.
func (r *Repository) Store() *store.Store {
	return r.store
}

// GetConfig assembles the full nested document from the normalized tables.
// Discover and performance settings are optional sub-documents: when their
// root row is absent the field is omitted, not stubbed.
func (r *Repository) GetConfig(ctx context.Context) (*Config, error) {
	cfg := &Config{}

	profile, err := r.getProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	cfg.Profile = *profile

	if cfg.Navigation, err = r.getNavigation(ctx); err != nil {
		return nil, fmt.Errorf("read navigation: %w", err)
	}
	if cfg.SocialLinks, err = r.getSocialLinks(ctx); err != nil {
		return nil, fmt.Errorf("read social links: %w", err)
	}

	projects, err := r.getProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("read projects: %w", err)
	}
	cfg.Projects = *projects

	if cfg.QuickLinks, err = r.getQuickLinks(ctx); err != nil {
		return nil, fmt.Errorf("read quick links: %w", err)
	}

	contact, err := r.getContact(ctx)
	if err != nil {
		return nil, fmt.Errorf("read contact: %w", err)
	}
	cfg.Contact = *contact

	webhookRow, err := store.QueryRow(ctx, r.store.DB, "SELECT discord FROM webhooks LIMIT 1")
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("read webhooks: %w", err)
	}
	if webhookRow != nil {
		cfg.Webhooks.Discord = store.AsString(webhookRow["discord"])
	}

	cfg.OwnerSettings = r.getOwnerSettings(ctx)

	if cfg.Discover, err = r.getDiscover(ctx); err != nil {
		// Optional feature: degrade to an absent sub-document.
		log.Printf("ERROR: reading discover data: %v", err)
		cfg.Discover = nil
	}

	if cfg.PerformanceSettings, err = r.getPerformanceSettings(ctx); err != nil {
		log.Printf("ERROR: reading performance settings: %v", err)
		cfg.PerformanceSettings = nil
	}

	return cfg, nil
}

func (r *Repository) getProfile(ctx context.Context) (*Profile, error) {
	row, err := store.QueryRow(ctx, r.store.DB, "SELECT * FROM profile LIMIT 1")
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:       store.AsInt(row["id"]),
		Name:     store.AsString(row["name"]),
		Title:    store.AsString(row["title"]),
		Avatar:   store.AsString(row["avatar"]),
		Banner:   store.AsString(row["banner"]),
		Verified: store.AsBool(row["verified"]),
		Bio:      store.AsString(row["bio"]),
		Status:   store.AsString(row["status"]),
	}, nil
}

func (r *Repository) getNavigation(ctx context.Context) ([]NavigationItem, error) {
	rows, err := store.QueryRows(ctx, r.store.DB,
		"SELECT id, name, path, active FROM navigation ORDER BY display_order")
	if err != nil {
		return nil, err
	}
	items := make([]NavigationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, NavigationItem{
			ID:     store.AsInt(row["id"]),
			Name:   store.AsString(row["name"]),
			Path:   store.AsString(row["path"]),
			Active: store.AsBool(row["active"]),
		})
	}
	return items, nil
}

func (r *Repository) getSocialLinks(ctx context.Context) ([]SocialLink, error) {
	rows, err := store.QueryRows(ctx, r.store.DB,
		"SELECT id, name, username, url, icon, action FROM social_links")
	if err != nil {
		return nil, err
	}
	links := make([]SocialLink, 0, len(rows))
	for _, row := range rows {
		links = append(links, SocialLink{
			ID:       store.AsInt(row["id"]),
			Name:     store.AsString(row["name"]),
			Username: store.AsString(row["username"]),
			URL:      store.AsString(row["url"]),
			Icon:     store.AsString(row["icon"]),
			Action:   store.AsString(row["action"]),
		})
	}
	return links, nil
}

func (r *Repository) getProjects(ctx context.Context) (*Projects, error) {
	row, err := store.QueryRow(ctx, r.store.DB, "SELECT * FROM projects LIMIT 1")
	if err != nil {
		return nil, err
	}
	projects := &Projects{
		ID:          store.AsInt(row["id"]),
		Title:       store.AsString(row["title"]),
		Description: store.AsString(row["description"]),
		Items:       []ProjectItem{},
	}

	itemRows, err := store.QueryRows(ctx, r.store.DB,
		"SELECT name, icon, url, preview FROM project_items WHERE project_id = ?", projects.ID)
	if err != nil {
		return nil, err
	}
	for _, item := range itemRows {
		projects.Items = append(projects.Items, ProjectItem{
			Name:    store.AsString(item["name"]),
			Icon:    store.AsString(item["icon"]),
			URL:     store.AsString(item["url"]),
			Preview: store.AsString(item["preview"]),
		})
	}
	return projects, nil
}

func (r *Repository) getQuickLinks(ctx context.Context) ([]QuickLink, error) {
	rows, err := store.QueryRows(ctx, r.store.DB, "SELECT name, url FROM quick_links")
	if err != nil {
		return nil, err
	}
	links := make([]QuickLink, 0, len(rows))
	for _, row := range rows {
		links = append(links, QuickLink{
			Name: store.AsString(row["name"]),
			URL:  store.AsString(row["url"]),
		})
	}
	return links, nil
}

func (r *Repository) getContact(ctx context.Context) (*Contact, error) {
	row, err := store.QueryRow(ctx, r.store.DB, "SELECT * FROM contact LIMIT 1")
	if err != nil {
		return nil, err
	}
	contact := &Contact{
		ButtonText:   store.AsString(row["button_text"]),
		Title:        store.AsString(row["title"]),
		SubmitButton: store.AsString(row["submit_button"]),
		CancelButton: store.AsString(row["cancel_button"]),
		ContactURL:   store.AsString(row["contact_url"]),
		FormFields:   []FormField{},
	}

	contactID := store.AsInt(row["id"])
	fieldRows, err := store.QueryRows(ctx, r.store.DB,
		"SELECT type, label, required FROM contact_fields WHERE contact_id = ? ORDER BY display_order",
		contactID)
	if err != nil {
		return nil, err
	}
	for _, f := range fieldRows {
		contact.FormFields = append(contact.FormFields, FormField{
			Type:     store.AsString(f["type"]),
			Label:    store.AsString(f["label"]),
			Required: store.AsBool(f["required"]),
		})
	}
	return contact, nil
}

// getOwnerSettings never fails the whole read: a missing row or NULL values
// degrade to defaults.
func (r *Repository) getOwnerSettings(ctx context.Context) OwnerSettings {
	settings := OwnerSettings{
		LoadingLetter: defaultLoadingLetter,
		LoadingText:   defaultLoadingText,
	}

	row, err := store.QueryRow(ctx, r.store.DB,
		"SELECT email, loading_letter, loading_text FROM owner_settings WHERE id = 1")
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Printf("ERROR: reading owner settings: %v", err)
		}
		return settings
	}

	settings.Email = store.AsString(row["email"])
	if v := store.AsString(row["loading_letter"]); v != "" {
		settings.LoadingLetter = v
	}
	if v := store.AsString(row["loading_text"]); v != "" {
		settings.LoadingText = v
	}
	return settings
}

func (r *Repository) getDiscover(ctx context.Context) (*Discover, error) {
	row, err := store.QueryRow(ctx, r.store.DB, "SELECT * FROM discover LIMIT 1")
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	discoverID := store.AsInt(row["id"])
	discover := &Discover{
		Title:       store.AsString(row["title"]),
		Description: store.AsString(row["description"]),
		Sections:    []DiscoverSection{},
	}

	sectionRows, err := store.QueryRows(ctx, r.store.DB,
		"SELECT id, title, description FROM discover_sections WHERE discover_id = ?", discoverID)
	if err != nil {
		return nil, err
	}
	for _, s := range sectionRows {
		section := DiscoverSection{
			ID:          store.AsInt(s["id"]),
			Title:       store.AsString(s["title"]),
			Description: store.AsString(s["description"]),
			Items:       []DiscoverItem{},
		}
		itemRows, err := store.QueryRows(ctx, r.store.DB,
			"SELECT id, title, description, image, url, tag FROM discover_items WHERE section_id = ?",
			section.ID)
		if err != nil {
			return nil, err
		}
		for _, item := range itemRows {
			section.Items = append(section.Items, DiscoverItem{
				ID:          store.AsInt(item["id"]),
				Title:       store.AsString(item["title"]),
				Description: store.AsString(item["description"]),
				Image:       store.AsString(item["image"]),
				URL:         store.AsString(item["url"]),
				Tag:         store.AsString(item["tag"]),
			})
		}
		discover.Sections = append(discover.Sections, section)
	}

	statsRow, err := store.QueryRow(ctx, r.store.DB,
		"SELECT id, show_stats, experience_years FROM discover_stats WHERE discover_id = ?", discoverID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return discover, nil
		}
		return nil, err
	}

	stats := &DiscoverStats{
		ShowStats:       store.AsBool(statsRow["show_stats"]),
		ExperienceYears: store.AsInt(statsRow["experience_years"]),
		CustomStats:     []CustomStat{},
	}
	customRows, err := store.QueryRows(ctx, r.store.DB,
		"SELECT label, value FROM discover_custom_stats WHERE stats_id = ?",
		store.AsInt(statsRow["id"]))
	if err != nil {
		return nil, err
	}
	for _, c := range customRows {
		stats.CustomStats = append(stats.CustomStats, CustomStat{
			Label: store.AsString(c["label"]),
			Value: store.AsString(c["value"]),
		})
	}
	discover.Stats = stats
	return discover, nil
}

func (r *Repository) getPerformanceSettings(ctx context.Context) (*PerformanceSettings, error) {
	row, err := store.QueryRow(ctx, r.store.DB, "SELECT * FROM performance_settings LIMIT 1")
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &PerformanceSettings{
		ImageOptimization: store.AsBool(row["image_optimization"]),
		Analytics:         store.AsBool(row["analytics"]),
	}, nil
}

// GetOwnerEmail returns the owner notification address, or "" when unset.
func (r *Repository) GetOwnerEmail(ctx context.Context) (string, error) {
	return r.getOwnerSettings(ctx).Email, nil
}

// GetDiscordWebhook returns the configured Discord webhook URL, or "".
func (r *Repository) GetDiscordWebhook(ctx context.Context) (string, error) {
	row, err := store.QueryRow(ctx, r.store.DB, "SELECT discord FROM webhooks LIMIT 1")
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read webhook: %w", err)
	}
	return store.AsString(row["discord"]), nil
}
