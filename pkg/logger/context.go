package logger

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const localsKey = "logger"

// WithLogger attaches a request scoped logger to the fiber context.
func WithLogger(c *fiber.Ctx, log *zap.Logger) {
	c.Locals(localsKey, log)
}

// FromContext returns the request scoped logger, falling back to the global one.
func FromContext(c *fiber.Ctx) *zap.Logger {
	if l, ok := c.Locals(localsKey).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}
