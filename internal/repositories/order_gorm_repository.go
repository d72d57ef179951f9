package repositories

import (
	"context"
	"errors"
	"time"

	"mandi/internal/errs"
	"mandi/internal/models"

	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// List returns matching orders with their items, newest first.
func (r *GORMOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Preload("Items")
	if filter.VendorID != "" {
		q = q.Where("vendor_id = ?", filter.VendorID)
	}
	if filter.SupplierID != "" {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	var orders []models.Order
	if err := q.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, storeErr("list orders", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return getOrder(r.db.WithContext(ctx), id)
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return storeErr("create order", err)
	}
	return nil
}

func (r *GORMOrderRepository) Transition(ctx context.Context, id string, from, to models.OrderStatus, reserveStock bool) (*models.Order, error) {
	var order *models.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Updates(map[string]any{"status": to, "updated_at": time.Now()})
		if res.Error != nil {
			return storeErr("update order status", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}

		if reserveStock {
			var items []models.OrderItem
			if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
				return storeErr("load order items", err)
			}
			for _, item := range items {
				res := tx.Model(&models.Product{}).
					Where("id = ? AND stock_quantity >= ?", item.ProductID, item.Quantity).
					Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity))
				if res.Error != nil {
					return storeErr("reserve stock", res.Error)
				}
				if res.RowsAffected == 0 {
					return shortStock(tx, item.ProductID)
				}
			}
		}

		var err error
		order, err = getOrder(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// shortStock explains a reservation that matched no row: the product was removed from
// the catalogue after the order was placed, or it holds too little stock.
func shortStock(tx *gorm.DB, productID string) error {
	var product models.Product
	err := tx.Unscoped().Select("id", "deleted_at").First(&product, "id = ?", productID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && product.DeletedAt.Valid):
		return errs.Validation("product %s is no longer available", productID)
	case err != nil:
		return storeErr("load product", err)
	}
	return errs.Validation("insufficient stock for product %s", productID)
}

func getOrder(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("order with ID %s not found", id)
		}
		return nil, storeErr("get order", err)
	}
	return &order, nil
}
