package services

import (
	"context"

	"mandi/internal/errs"
	"mandi/internal/models"
	"mandi/internal/repositories"
)

type PriceAlertInput struct {
	ProductID   string  `json:"product_id" validate:"required"`
	TargetPrice float64 `json:"target_price" validate:"gt=0"`
}

// PriceAlertService lets vendors watch product prices.
type PriceAlertService struct {
	alerts   repositories.PriceAlertRepository
	products repositories.ProductRepository
	profiles repositories.ProfileRepository
}

func NewPriceAlertService(alerts repositories.PriceAlertRepository, products repositories.ProductRepository, profiles repositories.ProfileRepository) *PriceAlertService {
	return &PriceAlertService{alerts: alerts, products: products, profiles: profiles}
}

func (s *PriceAlertService) Create(ctx context.Context, userID string, in PriceAlertInput) (*models.PriceAlert, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	vendor, err := s.vendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, in.ProductID); err != nil {
		return nil, err
	}
	alert := &models.PriceAlert{
		VendorID:    vendor.ID,
		ProductID:   in.ProductID,
		TargetPrice: in.TargetPrice,
		IsActive:    true,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

func (s *PriceAlertService) List(ctx context.Context, userID string) ([]models.PriceAlert, error) {
	vendor, err := s.vendor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.alerts.ListByVendor(ctx, vendor.ID)
}

func (s *PriceAlertService) Delete(ctx context.Context, userID, id string) error {
	vendor, err := s.vendor(ctx, userID)
	if err != nil {
		return err
	}
	alert, err := s.alerts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if alert.VendorID != vendor.ID {
		return errs.NotFound("price alert with ID %s not found", id)
	}
	return s.alerts.Delete(ctx, id)
}

func (s *PriceAlertService) vendor(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if p.Role != models.RoleVendor {
		return nil, errs.Forbidden("only vendors can watch prices")
	}
	return p, nil
}
