package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderItem is a line of an order. Prices are snapshots taken when the order was placed.
type OrderItem struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string    `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID  string    `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	UnitPrice  float64   `json:"unit_price" gorm:"not null"`
	TotalPrice float64   `json:"total_price" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// Order is placed by a vendor against a single supplier.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	VendorID        string      `json:"vendor_id" gorm:"type:varchar(36);index;not null"`
	SupplierID      string      `json:"supplier_id" gorm:"type:varchar(36);index;not null"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(16);index;not null"`
	TotalAmount     float64     `json:"total_amount" gorm:"not null"`
	DeliveryAddress string      `json:"delivery_address" gorm:"type:text;not null"`
	DeliveryDate    *time.Time  `json:"delivery_date,omitempty"`
	Notes           string      `json:"notes,omitempty" gorm:"type:text"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// HasParticipant reports whether the profile is the vendor or the supplier of the order.
func (o *Order) HasParticipant(profileID string) bool {
	return o.VendorID == profileID || o.SupplierID == profileID
}
