package middleware

import (
	"errors"
	"time"

	"mandi/internal/metrics"
	"mandi/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger attaches a request-scoped logger carrying the request id and logs every
// request once it completes. It expects the requestid middleware to run first.
func RequestLogger(base *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		log := base.With(zap.String("request_id", c.GetRespHeader(fiber.HeaderXRequestID)))
		logger.WithLogger(c, log)

		err := c.Next()

		status := statusOf(c, err)
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.FromContext(c).Error("request failed", append(fields, zap.Error(err))...)
		case status >= fiber.StatusBadRequest:
			logger.FromContext(c).Info("request rejected", fields...)
		default:
			logger.FromContext(c).Info("request completed", fields...)
		}
		return err
	}
}

// HTTPMetrics records request counts and latency by route pattern.
func HTTPMetrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		m.ObserveHTTP(c.Method(), c.Route().Path, statusOf(c, err), time.Since(start))
		return err
	}
}

// statusOf predicts the status sent for err, which the error handler has not written yet.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
