package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups products, e.g. vegetables or spices.
type Category struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	NameHindi   string    `json:"name_hindi,omitempty" gorm:"type:varchar(100)"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// Product is a raw material listed by exactly one supplier.
type Product struct {
	ID                   string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SupplierID           string         `json:"supplier_id" gorm:"type:varchar(36);index;not null"`
	CategoryID           string         `json:"category_id" gorm:"type:varchar(36);index;not null"`
	Name                 string         `json:"name" gorm:"type:varchar(100);not null"`
	NameHindi            string         `json:"name_hindi,omitempty" gorm:"type:varchar(100)"`
	Description          string         `json:"description,omitempty" gorm:"type:text"`
	PricePerUnit         float64        `json:"price_per_unit" gorm:"not null"`
	Unit                 string         `json:"unit" gorm:"type:varchar(20);not null"`
	StockQuantity        int            `json:"stock_quantity"`
	MinimumOrderQuantity int            `json:"minimum_order_quantity"`
	IsAvailable          bool           `json:"is_available"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
