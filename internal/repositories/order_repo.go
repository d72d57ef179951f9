package repositories

import (
	"context"

	"mandi/internal/models"
)

// OrderFilter narrows an order listing to one party and optionally one status.
type OrderFilter struct {
	VendorID   string
	SupplierID string
	Status     models.OrderStatus
}

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// Create stores the order together with its items.
	Create(ctx context.Context, order *models.Order) error
	// Transition moves an order from one status to another only if it is still in from.
	// With reserveStock the quantity of every item is taken out of product stock in the
	// same transaction. ErrStatusChanged is returned when from is stale.
	Transition(ctx context.Context, id string, from, to models.OrderStatus, reserveStock bool) (*models.Order, error)
}
