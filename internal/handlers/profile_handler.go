package handlers

import (
	"mandi/internal/middleware"
	"mandi/internal/ranking"
	"mandi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProfileHandler serves vendor and supplier profiles.
type ProfileHandler struct {
	service *services.ProfileService
}

func NewProfileHandler(service *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) RegisterRoutes(router fiber.Router) {
	profiles := router.Group("/profiles")
	profiles.Post("/", h.HandleCreate)
	profiles.Get("/me", h.HandleGetMe)
	profiles.Put("/me", h.HandleUpdateMe)
	profiles.Put("/me/location", h.HandleUpdateLocation)
	profiles.Get("/:id", h.HandleGet)

	router.Post("/suppliers/:id/ratings", h.HandleRate)
}

func (h *ProfileHandler) HandleCreate(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	p, err := h.service.Create(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func (h *ProfileHandler) HandleGetMe(c *fiber.Ctx) error {
	p, err := h.service.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *ProfileHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	p, err := h.service.UpdateMe(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

type locationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (h *ProfileHandler) HandleUpdateLocation(c *fiber.Ctx) error {
	var req locationRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if req.Latitude == nil || req.Longitude == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "latitude and longitude are required"})
	}
	p, err := h.service.UpdateLocation(c.UserContext(), middleware.UserID(c), ranking.Coordinates{Lat: *req.Latitude, Lng: *req.Longitude})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

func (h *ProfileHandler) HandleGet(c *fiber.Ctx) error {
	p, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}

type ratingRequest struct {
	Score int `json:"score"`
}

func (h *ProfileHandler) HandleRate(c *fiber.Ctx) error {
	var req ratingRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	p, err := h.service.Rate(c.UserContext(), middleware.UserID(c), c.Params("id"), req.Score)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(p)
}
