package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "user_id"

// Required rejects requests without a valid bearer token and stores the
// caller's id for UserID.
func Required(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "Token required")
		}
		userID, err := tokens.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// Optional stores the caller's id when a valid token is present and lets
// anonymous requests through.
func Optional(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if raw, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok && tokens != nil {
			if userID, err := tokens.Parse(raw); err == nil {
				c.Locals(userIDKey, userID)
			}
		}
		return c.Next()
	}
}

// UserID returns the id stored by Required or Optional, or "".
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
