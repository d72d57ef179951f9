package repositories

import (
	"context"
	"errors"
	"time"

	"mandi/internal/errs"
	"mandi/internal/models"

	"gorm.io/gorm"
)

// PriceAlertRepository stores vendor price watches.
type PriceAlertRepository interface {
	Create(ctx context.Context, alert *models.PriceAlert) error
	GetByID(ctx context.Context, id string) (*models.PriceAlert, error)
	ListByVendor(ctx context.Context, vendorID string) ([]models.PriceAlert, error)
	Delete(ctx context.Context, id string) error
	// Trigger deactivates and returns the active alerts on productID whose target is at
	// or above price. Each alert fires once.
	Trigger(ctx context.Context, productID string, price float64, at time.Time) ([]models.PriceAlert, error)
}

type GORMPriceAlertRepository struct {
	db *gorm.DB
}

func NewGORMPriceAlertRepository(db *gorm.DB) *GORMPriceAlertRepository {
	return &GORMPriceAlertRepository{db: db}
}

func (r *GORMPriceAlertRepository) Create(ctx context.Context, alert *models.PriceAlert) error {
	if err := r.db.WithContext(ctx).Create(alert).Error; err != nil {
		return storeErr("create price alert", err)
	}
	return nil
}

func (r *GORMPriceAlertRepository) GetByID(ctx context.Context, id string) (*models.PriceAlert, error) {
	var alert models.PriceAlert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("price alert with ID %s not found", id)
		}
		return nil, storeErr("get price alert", err)
	}
	return &alert, nil
}

func (r *GORMPriceAlertRepository) ListByVendor(ctx context.Context, vendorID string) ([]models.PriceAlert, error) {
	var alerts []models.PriceAlert
	if err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, storeErr("list price alerts", err)
	}
	return alerts, nil
}

func (r *GORMPriceAlertRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.PriceAlert{}, "id = ?", id)
	if res.Error != nil {
		return storeErr("delete price alert", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("price alert with ID %s not found for deletion", id)
	}
	return nil
}

func (r *GORMPriceAlertRepository) Trigger(ctx context.Context, productID string, price float64, at time.Time) ([]models.PriceAlert, error) {
	var fired []models.PriceAlert
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []models.PriceAlert
		err := tx.Where("product_id = ? AND is_active = ? AND target_price >= ?", productID, true, price).
			Find(&candidates).Error
		if err != nil {
			return storeErr("find price alerts", err)
		}
		for _, alert := range candidates {
			res := tx.Model(&models.PriceAlert{}).
				Where("id = ? AND is_active = ?", alert.ID, true).
				Updates(map[string]any{"is_active": false, "triggered_at": at})
			if res.Error != nil {
				return storeErr("trigger price alert", res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			alert.IsActive = false
			alert.TriggeredAt = &at
			fired = append(fired, alert)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fired, nil
}
