package auth_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"linkbio-backend/internal/auth"
	"linkbio-backend/internal/config"
	"linkbio-backend/internal/site"
	"linkbio-backend/internal/store"
)

const testSecret = "test-secret"

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateSessionToken(7, "admin", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := auth.ParseSessionToken(token, testSecret)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "7" || claims.Username != "admin" {
		t.Errorf("claims = %q/%q", claims.Subject, claims.Username)
	}
}

func TestSessionTokenRejectsWrongSecret(t *testing.T) {
	token, _ := auth.GenerateSessionToken(1, "admin", testSecret, time.Hour)
	if _, err := auth.ParseSessionToken(token, "other-secret"); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestSessionTokenRejectsExpired(t *testing.T) {
	token, _ := auth.GenerateSessionToken(1, "admin", testSecret, -time.Minute)
	if _, err := auth.ParseSessionToken(token, testSecret); err == nil {
		t.Error("expected error for expired token")
	}
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, config.DatabaseConfig{Path: t.TempDir(), Name: "test"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(s.Close)
	if err := s.Bootstrap(ctx); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return s
}

func TestStoreVerifier(t *testing.T) {
	ctx := context.Background()
	v := &auth.StoreVerifier{Store: testStore(t)}

	// Seeded default credentials.
	id, err := v.Verify(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("verify seeded admin: %v", err)
	}
	if id == 0 {
		t.Error("expected nonzero user id")
	}

	if _, err := v.Verify(ctx, "admin", "wrong"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Errorf("wrong password: err = %v, want ErrBadCredentials", err)
	}
	if _, err := v.Verify(ctx, "nobody", "admin"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Errorf("unknown user: err = %v, want ErrBadCredentials", err)
	}
}

func TestStoreVerifierUpgradesPlaintextPassword(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)
	v := &auth.StoreVerifier{Store: s}

	if _, err := store.Exec(ctx, s.DB,
		"INSERT INTO users (username, password) VALUES (?, ?)", "legacy", "s3cret"); err != nil {
		t.Fatalf("insert legacy user: %v", err)
	}

	id, err := v.Verify(ctx, "legacy", "s3cret")
	if err != nil {
		t.Fatalf("verify plaintext: %v", err)
	}

	row, err := store.QueryRow(ctx, s.DB, "SELECT password FROM users WHERE id = ?", id)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if stored := store.AsString(row["password"]); !strings.HasPrefix(stored, "$2") {
		t.Errorf("password not rehashed: %q", stored)
	}

	// The rehashed credential still works, the wrong one still fails.
	if _, err := v.Verify(ctx, "legacy", "s3cret"); err != nil {
		t.Errorf("verify after rehash: %v", err)
	}
	if _, err := v.Verify(ctx, "legacy", "other"); !errors.Is(err, auth.ErrBadCredentials) {
		t.Errorf("wrong password after rehash: err = %v, want ErrBadCredentials", err)
	}
}

func testApp(t *testing.T, h *auth.Handler) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var appErr *site.AppError
			if errors.As(err, &appErr) {
				return c.Status(appErr.Status).JSON(site.ErrorResponse{Error: appErr})
			}
			return c.Status(500).JSON(site.ErrorResponse{
				Error: &site.AppError{Code: "INTERNAL_ERROR", Message: "Internal server error"},
			})
		},
	})
	app.Post("/api/admin/login", h.Login)
	app.Post("/api/admin/logout", h.Logout)
	app.Get("/api/admin/check-auth", h.CheckAuth)
	app.Get("/api/admin/ping", auth.RequireAdmin(testSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	return app
}

func TestLoginSetsSessionCookie(t *testing.T) {
	h := auth.NewHandler(&auth.StoreVerifier{Store: testStore(t)}, config.SessionConfig{
		Secret: testSecret, TTLHours: 1,
	})
	app := testApp(t, h)

	req, _ := http.NewRequest("POST", "/api/admin/login",
		jsonBody(`{"username":"admin","password":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookie {
			token = c.Value
			if !c.HttpOnly {
				t.Error("session cookie must be HttpOnly")
			}
		}
	}
	if token == "" {
		t.Fatal("no session cookie set")
	}

	// The cookie admits the bearer to admin routes.
	req, _ = http.NewRequest("GET", "/api/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("admin request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("admin status = %d with valid session, want 200", resp.StatusCode)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h := auth.NewHandler(&auth.StoreVerifier{Store: testStore(t)}, config.SessionConfig{
		Secret: testSecret, TTLHours: 1,
	})
	app := testApp(t, h)

	req, _ := http.NewRequest("POST", "/api/admin/login",
		jsonBody(`{"username":"admin","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("login status = %d, want 401", resp.StatusCode)
	}
}

func TestAdminRouteRequiresSession(t *testing.T) {
	h := auth.NewHandler(&auth.StoreVerifier{Store: testStore(t)}, config.SessionConfig{
		Secret: testSecret, TTLHours: 1,
	})
	app := testApp(t, h)

	req, _ := http.NewRequest("GET", "/api/admin/ping", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("status = %d without session, want 401", resp.StatusCode)
	}

	req, _ = http.NewRequest("GET", "/api/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "garbage"})
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Errorf("status = %d with bad token, want 401", resp.StatusCode)
	}
}

func TestCheckAuth(t *testing.T) {
	h := auth.NewHandler(&auth.StoreVerifier{Store: testStore(t)}, config.SessionConfig{
		Secret: testSecret, TTLHours: 1,
	})
	app := testApp(t, h)

	req, _ := http.NewRequest("GET", "/api/admin/check-auth", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("check-auth status = %d", resp.StatusCode)
	}

	token, _ := auth.GenerateSessionToken(1, "admin", testSecret, time.Hour)
	req, _ = http.NewRequest("GET", "/api/admin/check-auth", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: token})
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Errorf("check-auth status = %d with session", resp.StatusCode)
	}
}
