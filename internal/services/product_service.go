package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"mandi/internal/errs"
	"mandi/internal/models"
	"mandi/internal/repositories"

	"go.uber.org/zap"
)

// ProductInput is the supplier-editable part of a product.
type ProductInput struct {
	CategoryID           string  `json:"category_id" validate:"required"`
	Name                 string  `json:"name" validate:"required,min=2,max=100"`
	NameHindi            string  `json:"name_hindi" validate:"omitempty,max=100"`
	Description          string  `json:"description" validate:"omitempty,max=2000"`
	PricePerUnit         float64 `json:"price_per_unit" validate:"gt=0"`
	Unit                 string  `json:"unit" validate:"required,max=20"`
	StockQuantity        int     `json:"stock_quantity" validate:"gte=0"`
	MinimumOrderQuantity int     `json:"minimum_order_quantity" validate:"gte=1"`
	IsAvailable          *bool   `json:"is_available"`
}

type priceChanged struct {
	ProductID  string  `json:"product_id"`
	SupplierID string  `json:"supplier_id"`
	OldPrice   float64 `json:"old_price"`
	NewPrice   float64 `json:"new_price"`
}

type alertTriggered struct {
	AlertID     string  `json:"alert_id"`
	VendorID    string  `json:"vendor_id"`
	ProductID   string  `json:"product_id"`
	TargetPrice float64 `json:"target_price"`
	Price       float64 `json:"price"`
}

// ProductService handles business logic related to the catalogue.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	profiles   repositories.ProfileRepository
	alerts     repositories.PriceAlertRepository
	events     *Events
	log        *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(
	repo repositories.ProductRepository,
	categories repositories.CategoryRepository,
	profiles repositories.ProfileRepository,
	alerts repositories.PriceAlertRepository,
	events *Events,
	log *zap.Logger,
) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{
		repo:       repo,
		categories: categories,
		profiles:   profiles,
		alerts:     alerts,
		events:     events,
		log:        log,
	}
}

func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListActive(ctx)
}

// GetAllProducts lists the catalogue, optionally narrowed to one supplier or category.
func (s *ProductService) GetAllProducts(ctx context.Context, supplierID, categoryID string) ([]models.Product, error) {
	filter := repositories.ProductFilter{CategoryID: categoryID}
	if supplierID != "" {
		filter.SupplierIDs = []string{supplierID}
	}
	return s.repo.List(ctx, filter)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct adds a product to the caller's catalogue.
func (s *ProductService) CreateProduct(ctx context.Context, userID string, in ProductInput) (*models.Product, error) {
	supplier, err := s.supplier(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}
	p := &models.Product{SupplierID: supplier.ID, IsAvailable: true}
	in.apply(p)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProduct rewrites a product owned by the caller. Lowering the price fires the
// matching price alerts.
func (s *ProductService) UpdateProduct(ctx context.Context, userID, id string, in ProductInput) (*models.Product, error) {
	p, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, in); err != nil {
		return nil, err
	}
	oldPrice := p.PricePerUnit
	in.apply(p)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	if p.PricePerUnit != oldPrice {
		s.events.Emit(ctx, EventProductPriceChanged, priceChanged{
			ProductID:  p.ID,
			SupplierID: p.SupplierID,
			OldPrice:   oldPrice,
			NewPrice:   p.PricePerUnit,
		})
		s.fireAlerts(ctx, p)
	}
	return p, nil
}

// DeleteProduct deletes a product owned by the caller.
func (s *ProductService) DeleteProduct(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) fireAlerts(ctx context.Context, p *models.Product) {
	fired, err := s.alerts.Trigger(ctx, p.ID, p.PricePerUnit, time.Now().UTC())
	if err != nil {
		s.log.Error("failed to evaluate price alerts", zap.String("product_id", p.ID), zap.Error(err))
		return
	}
	for _, a := range fired {
		s.events.Emit(ctx, EventPriceAlertTriggered, alertTriggered{
			AlertID:     a.ID,
			VendorID:    a.VendorID,
			ProductID:   a.ProductID,
			TargetPrice: a.TargetPrice,
			Price:       p.PricePerUnit,
		})
	}
}

func (s *ProductService) supplier(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if p.Role != models.RoleSupplier {
		return nil, errs.Forbidden("only suppliers can manage products")
	}
	return p, nil
}

func (s *ProductService) owned(ctx context.Context, userID, id string) (*models.Product, error) {
	supplier, err := s.supplier(ctx, userID)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.SupplierID != supplier.ID {
		return nil, errs.Forbidden("product %s belongs to another supplier", id)
	}
	return p, nil
}

func (s *ProductService) check(ctx context.Context, in ProductInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if _, err := s.categories.GetByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return errs.Fields("validation failed", map[string]string{"category_id": "unknown category"})
		}
		return err
	}
	return nil
}

func (in ProductInput) apply(p *models.Product) {
	p.CategoryID = in.CategoryID
	p.Name = strings.TrimSpace(in.Name)
	p.NameHindi = in.NameHindi
	p.Description = in.Description
	p.PricePerUnit = in.PricePerUnit
	p.Unit = in.Unit
	p.StockQuantity = in.StockQuantity
	p.MinimumOrderQuantity = in.MinimumOrderQuantity
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}
}
