package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role distinguishes the two sides of the marketplace.
type Role string

const (
	RoleVendor   Role = "vendor"
	RoleSupplier Role = "supplier"
)

func (r Role) Valid() bool {
	return r == RoleVendor || r == RoleSupplier
}

// Profile is the business identity of a vendor or supplier.
type Profile struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string    `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Role            Role      `json:"user_type" gorm:"column:user_type;type:varchar(16);index;not null"`
	BusinessName    string    `json:"business_name" gorm:"type:varchar(150);not null"`
	ContactPerson   string    `json:"contact_person" gorm:"type:varchar(100);not null"`
	Phone           string    `json:"phone" gorm:"type:varchar(20)"`
	Email           string    `json:"email" gorm:"type:varchar(255)"`
	Address         string    `json:"address" gorm:"type:text"`
	City            string    `json:"city" gorm:"type:varchar(80);index"`
	State           string    `json:"state" gorm:"type:varchar(80)"`
	Pincode         string    `json:"pincode" gorm:"type:varchar(12)"`
	BusinessLicense string    `json:"business_license,omitempty" gorm:"type:varchar(100)"`
	GSTIN           string    `json:"gstin,omitempty" gorm:"column:gstin;type:varchar(20)"`
	IsVerified      bool      `json:"is_verified" gorm:"index"`
	Rating          float64   `json:"rating"`
	TotalRatings    int       `json:"total_ratings"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// HasLocation reports whether both coordinates are set.
func (p *Profile) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// PartySummary is the slice of a profile shown next to chat rooms and messages.
type PartySummary struct {
	ID            string `json:"id"`
	BusinessName  string `json:"business_name"`
	ContactPerson string `json:"contact_person"`
}

func (p *Profile) Summary() PartySummary {
	return PartySummary{ID: p.ID, BusinessName: p.BusinessName, ContactPerson: p.ContactPerson}
}
