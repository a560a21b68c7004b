// Package auth implements the admin session: bcrypt credential checks and a
// signed session token carried in an HttpOnly cookie.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"linkbio-backend/internal/store"
)

// SessionCookie is the cookie holding the signed session token.
const SessionCookie = "admin_session"

// Claims represents the session token claims.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// GenerateSessionToken creates a signed token for an authenticated admin.
func GenerateSessionToken(userID int, username, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Username: username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates and parses a session token.
func ParseSessionToken(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CredentialVerifier checks a username/password pair against stored
// credentials and returns the matching user id.
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (int, error)
}

// ErrBadCredentials is returned for an unknown user or a wrong password;
// callers must not distinguish the two.
var ErrBadCredentials = errors.New("invalid username or password")

// StoreVerifier verifies credentials against the users table.
type StoreVerifier struct {
	Store *store.Store
}

func (v *StoreVerifier) Verify(ctx context.Context, username, password string) (int, error) {
	row, err := store.QueryRow(ctx, v.Store.DB,
		"SELECT id, password FROM users WHERE username = ?", username)
	if errors.Is(err, store.ErrNotFound) {
		return 0, ErrBadCredentials
	}
	if err != nil {
		return 0, fmt.Errorf("look up user: %w", err)
	}

	id := store.AsInt(row["id"])
	stored := store.AsString(row["password"])
	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil {
		return id, nil
	}

	// Databases created before hashing was introduced hold plaintext
	// passwords; accept those once and rehash in place.
	if !strings.HasPrefix(stored, "$2") &&
		subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1 {
		if hash, err := HashPassword(password); err == nil {
			if _, err := store.Exec(ctx, v.Store.DB,
				"UPDATE users SET password = ? WHERE id = ?", hash, id); err != nil {
				log.Printf("ERROR: upgrading password hash for user %d: %v", id, err)
			}
		}
		return id, nil
	}

	return 0, ErrBadCredentials
}
