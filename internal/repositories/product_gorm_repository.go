package repositories

import (
	"context"
	"errors"

	"mandi/internal/errs"
	"mandi/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{db: db}
}

// List retrieves the products matching filter, oldest first.
func (r *GORMProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx)
	if filter.SupplierIDs != nil {
		if len(filter.SupplierIDs) == 0 {
			return []models.Product{}, nil
		}
		q = q.Where("supplier_id IN ?", filter.SupplierIDs)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.AvailableOnly {
		q = q.Where("is_available = ?", true)
	}
	var products []models.Product
	if err := q.Order("created_at ASC").Find(&products).Error; err != nil {
		return nil, storeErr("list products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("product with ID %s not found", id)
		}
		return nil, storeErr("get product", err)
	}
	return &product, nil
}

func (r *GORMProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	out := make(map[string]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, storeErr("get products", err)
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// Create creates a new product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return storeErr("create product", err)
	}
	return nil
}

// Update writes every column of an existing product, zero values included.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Select("*").Omit("id", "supplier_id", "created_at", "deleted_at").Updates(product)
	if res.Error != nil {
		return storeErr("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("product with ID %s not found for update", product.ID)
	}
	return nil
}

// Delete soft-deletes a product. Order items keep referencing it.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("product with ID %s not found for deletion", id)
	}
	return nil
}
