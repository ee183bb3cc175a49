package middleware

import (
	"strings"

	"community-backend/dto"
	"community-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

const LocalUserID = "user_id"

// JWTUidOnly verifies a bearer token when one is present and stores the
// principal id in Locals. Requests without an Authorization header pass
// through anonymous; RequireAuth rejects them where a principal is needed.
func JWTUidOnly(v auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}
		if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
			return c.Status(fiber.StatusUnauthorized).
				JSON(dto.ErrorResponse{Error: "invalid authorization header", Code: "unauthenticated"})
		}

		uid, err := v.Verify(header[7:])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).
				JSON(dto.ErrorResponse{Error: err.Error(), Code: "unauthenticated"})
		}

		c.Locals(LocalUserID, uid)
		return c.Next()
	}
}

// RequireAuth answers 401 unless JWTUidOnly stored a principal.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := UIDObjectID(c); err != nil {
			return c.Status(fiber.StatusUnauthorized).
				JSON(dto.ErrorResponse{Error: "authentication required", Code: "unauthenticated"})
		}
		return c.Next()
	}
}
