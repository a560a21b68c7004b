package auth

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"linkbio-backend/internal/site"
)

// Session identifies the authenticated admin for the current request.
type Session struct {
	UserID   int
	Username string
}

// RequireAdmin returns a Fiber middleware that validates the session cookie
// and sets the Session on the request.
func RequireAdmin(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cookie := c.Cookies(SessionCookie)
		if cookie == "" {
			return site.UnauthorizedError("Not authenticated")
		}

		claims, err := ParseSessionToken(cookie, secret)
		if err != nil {
			return site.UnauthorizedError("Invalid or expired session")
		}

		userID, _ := strconv.Atoi(claims.Subject)
		c.Locals("session", &Session{
			UserID:   userID,
			Username: claims.Username,
		})

		return c.Next()
	}
}

// GetSession extracts the Session from a Fiber context.
func GetSession(c *fiber.Ctx) *Session {
	s, _ := c.Locals("session").(*Session)
	return s
}
