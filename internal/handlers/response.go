package handlers

import (
	"errors"
	"strconv"
	"strings"

	"mandi/internal/errs"
	"mandi/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError writes err as {"error": msg}, adding per-field "errors" for validation
// failures. Server-side failures are logged and answered with a generic message.
func respondError(c *fiber.Ctx, err error) error {
	status := errs.HTTPStatus(err)
	if status >= fiber.StatusInternalServerError {
		logger.FromContext(c).Error("request failed", zap.Error(err))
		msg := "internal server error"
		var serr *errs.StoreError
		if errors.As(err, &serr) {
			msg = serr.Error()
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	body := fiber.Map{"error": err.Error()}
	var verr *errs.ValidationError
	if errors.As(err, &verr) && len(verr.Fields) > 0 {
		body["errors"] = verr.Fields
	}
	return c.Status(status).JSON(body)
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		logger.FromContext(c).Debug("invalid request body", zap.Error(err))
		return errs.Validation("invalid request body")
	}
	return nil
}

// queryFloat reads an optional numeric query parameter.
func queryFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errs.Fields("invalid query", map[string]string{key: "must be a number"})
	}
	return &v, nil
}
