// Package admin exposes the session-gated management API: per-section config
// writers, password changes, image management, analytics and the destructive
// reset.
package admin

import (
	"errors"
	"log"
	"net/url"
	"os"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"linkbio-backend/internal/analytics"
	"linkbio-backend/internal/auth"
	"linkbio-backend/internal/content"
	"linkbio-backend/internal/notify"
	"linkbio-backend/internal/site"
	"linkbio-backend/internal/storage"
	"linkbio-backend/internal/store"
)

type Handler struct {
	repo      *content.Repository
	analytics *analytics.Service
	images    storage.ImageStore
}

func NewHandler(repo *content.Repository, svc *analytics.Service, images storage.ImageStore) *Handler {
	return &Handler{repo: repo, analytics: svc, images: images}
}

// RegisterRoutes mounts the admin API behind the session middleware.
func RegisterRoutes(app *fiber.App, h *Handler, sessionSecret string) {
	admin := app.Group("/api/admin", auth.RequireAdmin(sessionSecret))

	admin.Post("/update-profile", h.UpdateProfile)
	admin.Post("/update-navigation", h.UpdateNavigation)
	admin.Post("/update-social-link", h.UpdateSocialLink)
	admin.Post("/delete-social-link", h.DeleteSocialLink)
	admin.Post("/update-project", h.UpdateProject)
	admin.Post("/update-quick-links", h.UpdateQuickLinks)
	admin.Post("/update-contact-url", h.UpdateContactURL)
	admin.Post("/update-form-fields", h.UpdateFormFields)
	admin.Post("/update-webhook", h.UpdateWebhook)
	admin.Post("/update-owner-email", h.UpdateOwnerEmail)
	admin.Post("/update-loading-letter", h.UpdateLoadingLetter)
	admin.Post("/update-loading-text", h.UpdateLoadingText)
	admin.Post("/update-discover", h.UpdateDiscover)
	admin.Post("/update-performance-settings", h.UpdatePerformanceSettings)
	admin.Post("/update-password", h.UpdatePassword)
	admin.Post("/test-webhook", h.TestWebhook)

	admin.Post("/upload-image", h.UploadImage)
	admin.Get("/images", h.ListImages)
	admin.Delete("/images/:name", h.DeleteImage)

	admin.Get("/analytics", h.Analytics)
	admin.Post("/reset-database", h.ResetDatabase)
}

func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	var p content.Profile
	if err := c.BodyParser(&p); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if p.Name == "" {
		return site.ValidationError("Profile name is required")
	}
	if err := h.repo.UpdateProfile(c.Context(), &p); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateNavigation(c *fiber.Ctx) error {
	var items []content.NavigationItem
	if err := c.BodyParser(&items); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdateNavigation(c.Context(), items); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateSocialLink(c *fiber.Ctx) error {
	var link content.SocialLink
	if err := c.BodyParser(&link); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if link.Name == "" || link.URL == "" {
		return site.ValidationError("Link name and url are required")
	}
	id, err := h.repo.UpsertSocialLink(c.Context(), &link)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "id": id})
}

func (h *Handler) DeleteSocialLink(c *fiber.Ctx) error {
	var body struct {
		ID int `json:"id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	err := h.repo.DeleteSocialLink(c.Context(), body.ID)
	if errors.Is(err, store.ErrNotFound) {
		return site.NotFoundError("social link", strconv.Itoa(body.ID))
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateProject(c *fiber.Ctx) error {
	var p content.Projects
	if err := c.BodyParser(&p); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdateProject(c.Context(), &p); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateQuickLinks(c *fiber.Ctx) error {
	var links []content.QuickLink
	if err := c.BodyParser(&links); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdateQuickLinks(c.Context(), links); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateContactURL(c *fiber.Ctx) error {
	var body struct {
		ContactURL string `json:"contactUrl"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdateContactURL(c.Context(), body.ContactURL); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateFormFields(c *fiber.Ctx) error {
	var fields []content.FormField
	if err := c.BodyParser(&fields); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdateFormFields(c.Context(), fields); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateWebhook(c *fiber.Ctx) error {
	var body struct {
		Discord string `json:"discord"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdateWebhook(c.Context(), body.Discord); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateOwnerEmail(c *fiber.Ctx) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if body.Email == "" {
		return site.ValidationError("Email is required")
	}
	if err := h.repo.UpdateOwnerEmail(c.Context(), body.Email); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateLoadingLetter(c *fiber.Ctx) error {
	var body struct {
		Letter string `json:"letter"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdateLoadingLetter(c.Context(), body.Letter); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateLoadingText(c *fiber.Ctx) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdateLoadingText(c.Context(), body.Text); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdateDiscover(c *fiber.Ctx) error {
	var d content.Discover
	if err := c.BodyParser(&d); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if d.Title == "" {
		return site.ValidationError("Discover title is required")
	}
	if err := h.repo.UpdateDiscover(c.Context(), &d); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdatePerformanceSettings(c *fiber.Ctx) error {
	var p content.PerformanceSettings
	if err := c.BodyParser(&p); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if err := h.repo.UpdatePerformanceSettings(c.Context(), &p); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UpdatePassword(c *fiber.Ctx) error {
	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if body.NewPassword == "" {
		return site.ValidationError("New password is required")
	}

	session := auth.GetSession(c)
	if session == nil {
		return site.UnauthorizedError("Not authenticated")
	}

	verifier := &auth.StoreVerifier{Store: h.repo.Store()}
	if _, err := verifier.Verify(c.Context(), session.Username, body.CurrentPassword); err != nil {
		return site.UnauthorizedError("Current password is incorrect")
	}

	if err := h.repo.UpdatePassword(c.Context(), session.UserID, body.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

// TestWebhook dispatches a probe message synchronously so the admin sees the
// real delivery outcome, not the outbox's best effort.
func (h *Handler) TestWebhook(c *fiber.Ctx) error {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}

	url := body.URL
	if url == "" {
		stored, err := h.repo.GetDiscordWebhook(c.Context())
		if err != nil {
			return err
		}
		url = stored
	}
	if !notify.UsableWebhookURL(url) {
		return site.ValidationError("No webhook URL configured")
	}

	ev := notify.Event{
		Title: "Webhook Test",
		Fields: []notify.Field{
			{Name: "Status", Value: "If you can read this, the webhook works."},
		},
	}
	if err := notify.PostWebhook(c.Context(), url, ev); err != nil {
		log.Printf("ERROR: test webhook: %v", err)
		return c.Status(502).JSON(fiber.Map{"success": false, "message": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) UploadImage(c *fiber.Ctx) error {
	var body struct {
		Image string `json:"image"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if body.Image == "" {
		return site.ValidationError("Image data is required")
	}

	url, err := h.images.SaveDataURL(c.Context(), body.Image)
	switch {
	case errors.Is(err, storage.ErrNotImage):
		return site.ValidationError("Payload is not an image data URL")
	case errors.Is(err, storage.ErrTooLarge):
		return site.NewAppError("TOO_LARGE", fiber.StatusRequestEntityTooLarge, "Image exceeds the size limit")
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"success": true, "url": url})
}

func (h *Handler) ListImages(c *fiber.Ctx) error {
	images, err := h.images.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"images": images})
}

func (h *Handler) DeleteImage(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return site.ValidationError("Invalid file name")
	}

	err = h.images.Delete(c.Context(), name)
	switch {
	case errors.Is(err, storage.ErrBadFilename):
		return site.ValidationError("Invalid file name")
	case errors.Is(err, os.ErrNotExist):
		return site.NotFoundError("image", name)
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *Handler) Analytics(c *fiber.Ctx) error {
	overview, err := h.analytics.GetOverview(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(overview)
}

// ResetDatabase wipes all content, analytics and accounts, reseeds the
// placeholder document and clears uploads. Confirmation is explicit; this is
// not an endpoint to trip over.
func (h *Handler) ResetDatabase(c *fiber.Ctx) error {
	var body struct {
		Confirm string `json:"confirm"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if body.Confirm != "RESET" {
		return site.ValidationError(`Confirmation phrase "RESET" is required`)
	}

	if err := h.repo.Reset(c.Context()); err != nil {
		return err
	}
	if err := h.images.Clear(c.Context()); err != nil {
		// The rows are already gone; a leftover file is not worth a 500.
		log.Printf("ERROR: clear uploads after reset: %v", err)
	}

	log.Print("database reset to defaults")
	return c.JSON(fiber.Map{"success": true, "message": "Database reset to defaults"})
}

