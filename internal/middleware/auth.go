package middleware

import (
	"context"
	"strings"

	"newsletter/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves an access token to the user it was issued for.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (uint, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.Fields(c.Get(fiber.HeaderAuthorization))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func authenticate(c *fiber.Ctx, v TokenVerifier, token string) error {
	userID, err := v.VerifyAccessToken(c.UserContext(), token)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("Invalid or expired token"))
	}
	c.Locals("userID", userID)
	c.Locals("accessToken", token)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
	return c.Next()
}

// AuthRequired rejects requests without a valid bearer access token.
func AuthRequired(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("Authorization header required"))
		}
		token, ok := BearerToken(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("Invalid authorization header format"))
		}
		return authenticate(c, v, token)
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c)
		if !ok {
			return c.Next()
		}
		if userID, err := v.VerifyAccessToken(c.UserContext(), token); err == nil {
			c.Locals("userID", userID)
			c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
		}
		return c.Next()
	}
}

// WebSocketAuthRequired accepts the token from the "token" query parameter,
// since browsers cannot set headers on WebSocket upgrades.
func WebSocketAuthRequired(v TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			var ok bool
			if token, ok = BearerToken(c); !ok {
				return models.RespondWithError(c, fiber.StatusUnauthorized, models.NewUnauthorizedError("Token required"))
			}
		}
		return authenticate(c, v, token)
	}
}
