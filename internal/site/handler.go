// Package site carries the shared error type and the public, unauthenticated
// endpoints: the config document, contact submissions and page view tracking.
package site

import (
	"encoding/json"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"

	"linkbio-backend/internal/analytics"
	"linkbio-backend/internal/content"
	"linkbio-backend/internal/notify"
)

type Handler struct {
	repo         *content.Repository
	analytics    *analytics.Service
	outbox       notify.Outbox
	fallbackPath string
}

func NewHandler(repo *content.Repository, svc *analytics.Service, outbox notify.Outbox, fallbackPath string) *Handler {
	return &Handler{repo: repo, analytics: svc, outbox: outbox, fallbackPath: fallbackPath}
}

// GetConfig handles GET /api/config. When the store cannot produce a
// document it falls back to a static JSON file, then to the built-in
// placeholder, so the frontend always gets something renderable.
func (h *Handler) GetConfig(c *fiber.Ctx) error {
	cfg, err := h.repo.GetConfig(c.Context())
	if err == nil {
		return c.JSON(cfg)
	}
	log.Printf("ERROR: read config from store: %v", err)

	if h.fallbackPath != "" {
		if data, err := os.ReadFile(h.fallbackPath); err == nil {
			var doc map[string]any
			if err := json.Unmarshal(data, &doc); err == nil {
				return c.JSON(doc)
			}
			log.Printf("ERROR: parse fallback config %s: %v", h.fallbackPath, err)
		}
	}

	return c.JSON(content.DefaultConfig())
}

// ContactSubmit handles POST /api/contact/submit. Delivery is handed to the
// outbox; a notification channel being down must not lose the visitor a
// success response.
func (h *Handler) ContactSubmit(c *fiber.Ctx) error {
	var form map[string]string
	if err := c.BodyParser(&form); err != nil {
		return BadRequestError("Invalid request body")
	}

	if form["username"] == "" || form["email"] == "" || form["message"] == "" {
		return c.Status(400).JSON(fiber.Map{
			"success": false,
			"message": "Username, email, and message are required fields",
			"fields": fiber.Map{
				"username": form["username"] != "",
				"email":    form["email"] != "",
				"message":  form["message"] != "",
			},
		})
	}

	ev := notify.Event{
		Title: "New Contact Form Message from " + form["username"],
		Fields: []notify.Field{
			{Name: "Name", Value: form["username"]},
			{Name: "Email", Value: form["email"]},
			{Name: "Message", Value: form["message"]},
		},
	}
	// Any extra fields the form was configured with ride along.
	for k, v := range form {
		switch k {
		case "username", "email", "message":
		default:
			ev.Fields = append(ev.Fields, notify.Field{Name: k, Value: v})
		}
	}
	h.outbox.Emit(ev)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Your message has been sent successfully! We'll get back to you soon.",
	})
}

// PageView handles POST /api/analytics/pageview.
func (h *Handler) PageView(c *fiber.Ctx) error {
	var body struct {
		PagePath  string `json:"page_path"`
		VisitorID string `json:"visitor_id"`
		Referrer  string `json:"referrer"`
		Country   string `json:"country"`
	}
	if err := c.BodyParser(&body); err != nil {
		return BadRequestError("Invalid request body")
	}
	if body.PagePath == "" {
		return BadRequestError("page_path is required")
	}

	userAgent := c.Get("User-Agent")
	ip := c.IP()
	visitorID := body.VisitorID
	if visitorID == "" {
		visitorID = analytics.VisitorID(ip, userAgent)
	}
	country := c.Get("CF-IPCountry")
	if country == "" {
		country = body.Country
	}
	referrer := body.Referrer
	if referrer == "" {
		referrer = c.Get("Referer")
	}

	err := h.analytics.Record(c.Context(), analytics.PageView{
		PagePath:  body.PagePath,
		VisitorID: visitorID,
		IPAddress: ip,
		UserAgent: userAgent,
		Referrer:  referrer,
		Country:   country,
	})
	if err != nil {
		log.Printf("ERROR: record page view: %v", err)
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to record page view"})
	}

	return c.JSON(fiber.Map{"success": true, "visitor_id": visitorID})
}

// RegisterRoutes mounts the public endpoints.
func RegisterRoutes(app *fiber.App, h *Handler) {
	app.Get("/api/config", h.GetConfig)
	app.Post("/api/contact/submit", h.ContactSubmit)
	app.Post("/api/analytics/pageview", h.PageView)
}
