package repositories

import (
	"context"

	"mandi/internal/models"
)

// ProductFilter narrows a product listing. Zero fields do not filter.
type ProductFilter struct {
	SupplierIDs   []string
	CategoryID    string
	AvailableOnly bool
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}
