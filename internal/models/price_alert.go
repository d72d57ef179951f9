package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PriceAlert fires once when a product's price drops to or below TargetPrice.
type PriceAlert struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VendorID    string     `json:"vendor_id" gorm:"type:varchar(36);index;not null"`
	ProductID   string     `json:"product_id" gorm:"type:varchar(36);index;not null"`
	TargetPrice float64    `json:"target_price" gorm:"not null"`
	IsActive    bool       `json:"is_active" gorm:"index"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (a *PriceAlert) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
