package handlers

import (
	"mandi/internal/middleware"
	"mandi/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SupplierHandler serves supplier discovery.
type SupplierHandler struct {
	service *services.DiscoveryService
}

func NewSupplierHandler(service *services.DiscoveryService) *SupplierHandler {
	return &SupplierHandler{service: service}
}

func (h *SupplierHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/suppliers/nearby", h.HandleNearby)
}

// HandleNearby ranks suppliers around ?lat&lng, or the caller's stored location.
func (h *SupplierHandler) HandleNearby(c *fiber.Ctx) error {
	q := services.NearbyQuery{
		Sort:     c.Query("sort"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	var err error
	if q.Lat, err = queryFloat(c, "lat"); err != nil {
		return respondError(c, err)
	}
	if q.Lng, err = queryFloat(c, "lng"); err != nil {
		return respondError(c, err)
	}
	if q.RadiusKm, err = queryFloat(c, "radius"); err != nil {
		return respondError(c, err)
	}

	results, err := h.service.Nearby(c.UserContext(), middleware.UserID(c), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"suppliers": results})
}
