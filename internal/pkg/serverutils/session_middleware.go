// FILE: internal/pkg/serverutils/session_middleware.go
package serverutils

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionIDKey = "session_id"

type SessionOptions struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SignSessionToken issues the cookie value for sid.
func SignSessionToken(secret, sid string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseSessionToken returns the session ID of a valid, unexpired token.
func ParseSessionToken(secret, tokenStr string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.SessionID == "" {
		return "", errors.New("invalid session token")
	}
	return claims.SessionID, nil
}

// SessionMiddleware gives every visitor a session ID. The signed cookie is
// re-issued on each request so the expiry slides with activity.
func SessionMiddleware(opts SessionOptions) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		sid, err := ParseSessionToken(opts.Secret, ctx.Cookies(opts.CookieName))
		if err != nil {
			sid = uuid.NewString()
		}

		token, err := SignSessionToken(opts.Secret, sid, opts.TTL)
		if err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Failed to issue session"))
		}
		ctx.Cookie(&fiber.Cookie{
			Name:     opts.CookieName,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(opts.TTL),
			HTTPOnly: true,
			Secure:   opts.Secure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		ctx.Locals(SessionIDKey, sid)
		return ctx.Next()
	}
}

// SessionID reads the ID stored by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) string {
	sid, _ := ctx.Locals(SessionIDKey).(string)
	return sid
}
