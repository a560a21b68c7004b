package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"linkbio-backend/internal/config"
	"linkbio-backend/internal/site"
)

// Handler handles login, logout and session checks.
type Handler struct {
	verifier CredentialVerifier
	cfg      config.SessionConfig
}

func NewHandler(verifier CredentialVerifier, cfg config.SessionConfig) *Handler {
	return &Handler{verifier: verifier, cfg: cfg}
}

// Login handles POST /api/admin/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return site.BadRequestError("Invalid request body")
	}
	if body.Username == "" || body.Password == "" {
		return site.BadRequestError("Username and password are required")
	}

	userID, err := h.verifier.Verify(c.Context(), body.Username, body.Password)
	if errors.Is(err, ErrBadCredentials) {
		return site.UnauthorizedError("Invalid username or password")
	}
	if err != nil {
		return err
	}

	ttl := h.cfg.TTL()
	token, err := GenerateSessionToken(userID, body.Username, h.cfg.Secret, ttl)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"success": true})
}

// Logout handles POST /api/admin/logout. Clearing the cookie is all there is to it;
// an already-expired session logs out fine.
func (h *Handler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"success": true})
}

// CheckAuth handles GET /api/admin/check-auth.
func (h *Handler) CheckAuth(c *fiber.Ctx) error {
	cookie := c.Cookies(SessionCookie)
	if cookie == "" {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	claims, err := ParseSessionToken(cookie, h.cfg.Secret)
	if err != nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}
	return c.JSON(fiber.Map{"authenticated": true, "username": claims.Username})
}
