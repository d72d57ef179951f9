package middleware

import (
	"strings"

	"mandi/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const userIDKey = "user_id"

// TokenValidator resolves a bearer token to the user it was issued to.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		userID, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.FromContext(c).Debug("jwt validation failed", zap.Error(err))
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(userIDKey, userID)
		logger.WithLogger(c, logger.FromContext(c).With(zap.String("user_id", userID)))
		return c.Next()
	}
}

// UserID returns the authenticated user of the request, or "" outside AuthRequired.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
}
