package handlers

import (
	"mandi/internal/middleware"
	"mandi/internal/services"

	"github.com/gofiber/fiber/v2"
)

type PriceAlertHandler struct {
	service *services.PriceAlertService
}

func NewPriceAlertHandler(service *services.PriceAlertService) *PriceAlertHandler {
	return &PriceAlertHandler{service: service}
}

func (h *PriceAlertHandler) RegisterRoutes(router fiber.Router) {
	alerts := router.Group("/price-alerts")
	alerts.Get("/", h.HandleList)
	alerts.Post("/", h.HandleCreate)
	alerts.Delete("/:id", h.HandleDelete)
}

func (h *PriceAlertHandler) HandleList(c *fiber.Ctx) error {
	alerts, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(alerts)
}

func (h *PriceAlertHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.PriceAlertInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	alert, err := h.service.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(alert)
}

func (h *PriceAlertHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
