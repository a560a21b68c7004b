// Package setup implements the first-run flow: status probe, installation key
// verification, one-shot completion and the permanent setup lock.
package setup

import (
	"crypto/subtle"
	"database/sql"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"linkbio-backend/internal/auth"
	"linkbio-backend/internal/config"
	"linkbio-backend/internal/site"
	"linkbio-backend/internal/store"
)

type Handler struct {
	store *store.Store
	cfg   config.SetupConfig
}

func NewHandler(s *store.Store, cfg config.SetupConfig) *Handler {
	return &Handler{store: s, cfg: cfg}
}

// Status handles GET /api/setup/status.
func (h *Handler) Status(c *fiber.Ctx) error {
	ctx := c.Context()
	complete, err := h.store.IsSetupComplete(ctx)
	if err != nil {
		return err
	}
	locked, err := h.store.IsSetupLocked(ctx)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"isFirstTime": !complete && !locked,
		"isComplete":  complete,
		"isLocked":    locked,
	})
}

// VerifyKey handles POST /api/setup/verify-key.
func (h *Handler) VerifyKey(c *fiber.Ctx) error {
	var body struct {
		Key string `json:"key"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if !h.keyMatches(body.Key) {
		return site.UnauthorizedError("Invalid installation key")
	}
	return c.JSON(fiber.Map{"valid": true})
}

// Complete handles POST /api/setup/complete. It replaces whatever admin
// accounts exist with exactly one, then records the completion marker. The
// whole step is one transaction so a failure leaves setup still pending.
func (h *Handler) Complete(c *fiber.Ctx) error {
	ctx := c.Context()

	locked, err := h.store.IsSetupLocked(ctx)
	if err != nil {
		return err
	}
	if locked {
		return site.ForbiddenError("Setup is permanently locked")
	}
	complete, err := h.store.IsSetupComplete(ctx)
	if err != nil {
		return err
	}
	if complete {
		return site.ForbiddenError("Setup has already been completed")
	}

	var body struct {
		Key      string `json:"key"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if !h.keyMatches(body.Key) {
		return site.UnauthorizedError("Invalid installation key")
	}
	if body.Username == "" || body.Password == "" {
		return site.ValidationError("Username and password are required")
	}

	hash, err := auth.HashPassword(body.Password)
	if err != nil {
		return err
	}

	err = h.store.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := store.Exec(ctx, tx, "DELETE FROM users"); err != nil {
			return fmt.Errorf("clear users: %w", err)
		}
		if _, err := store.Exec(ctx, tx,
			"INSERT INTO users (username, password) VALUES (?, ?)", body.Username, hash); err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		if _, err := store.Exec(ctx, tx,
			"INSERT INTO setup_complete (completed, completed_at) VALUES (1, datetime('now'))"); err != nil {
			return fmt.Errorf("record completion: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("setup completed, admin account %q created", body.Username)
	return c.JSON(fiber.Map{"success": true})
}

// SelfDelete handles POST /api/setup/self-delete. The setup surface cannot
// remove its own code at runtime; instead it writes a permanent lock row, and
// every later setup attempt is refused.
func (h *Handler) SelfDelete(c *fiber.Ctx) error {
	ctx := c.Context()

	locked, err := h.store.IsSetupLocked(ctx)
	if err != nil {
		return err
	}
	if !locked {
		if _, err := store.Exec(ctx, h.store.DB,
			"INSERT INTO setup_lock (reason) VALUES ('self-delete requested')"); err != nil {
			return fmt.Errorf("lock setup: %w", err)
		}
		log.Print("setup permanently locked")
	}
	return c.JSON(fiber.Map{"success": true, "locked": true})
}

func (h *Handler) keyMatches(key string) bool {
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.cfg.InstallationKey)) == 1
}

// RegisterRoutes mounts the setup endpoints.
func RegisterRoutes(app *fiber.App, h *Handler) {
	g := app.Group("/api/setup")
	g.Get("/status", h.Status)
	g.Post("/verify-key", h.VerifyKey)
	g.Post("/complete", h.Complete)
	g.Post("/self-delete", h.SelfDelete)
}
