package middleware

import (
	"errors"
	"time"

	"evex/pkg/session"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	CookieName = "evex_session"

	LocalSID   = "sid"
	localEntry = "entry"
)

// SessionConfig controls the browser session cookie. The cookie only names
// the session; tokens never leave the portal.
type SessionConfig struct {
	Secret   string
	Secure   bool
	TTL      time.Duration
	Registry *session.Registry
}

func Session(cfg SessionConfig) fiber.Handler {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * 24 * time.Hour
	}

	return func(c *fiber.Ctx) error {
		sid, err := ParseSessionToken(c.Cookies(CookieName), cfg.Secret)
		if err != nil {
			sid = uuid.NewString()
			token, err := SignSessionToken(sid, cfg.Secret, cfg.TTL)
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not start session"})
			}
			c.Cookie(&fiber.Cookie{
				Name:     CookieName,
				Value:    token,
				Expires:  time.Now().Add(cfg.TTL),
				HTTPOnly: true,
				Secure:   cfg.Secure,
				SameSite: "Lax",
				Path:     "/",
			})
		}

		c.Locals(LocalSID, sid)
		c.Locals(localEntry, cfg.Registry.Get(sid))
		return c.Next()
	}
}

func SignSessionToken(sid, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

var errNoSession = errors.New("no session cookie")

func ParseSessionToken(raw, secret string) (string, error) {
	if raw == "" {
		return "", errNoSession
	}
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errNoSession
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", errNoSession
	}
	return claims.Subject, nil
}

func SID(c *fiber.Ctx) string {
	sid, _ := c.Locals(LocalSID).(string)
	return sid
}

// Entry is the caller's session bundle. Only valid behind Session.
func Entry(c *fiber.Ctx) *session.Entry {
	e, _ := c.Locals(localEntry).(*session.Entry)
	return e
}
