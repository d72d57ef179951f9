package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"mandi/internal/errs"
	"mandi/internal/lifecycle"
	"mandi/internal/metrics"
	"mandi/internal/models"
	"mandi/internal/repositories"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type OrderItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

// PlaceOrderInput is a vendor's order against one supplier.
type PlaceOrderInput struct {
	SupplierID      string           `json:"supplier_id" validate:"required"`
	DeliveryAddress string           `json:"delivery_address" validate:"required,max=500"`
	DeliveryDate    *time.Time       `json:"delivery_date"`
	Notes           string           `json:"notes" validate:"omitempty,max=1000"`
	Items           []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// OrderView is an order as seen by one participant.
type OrderView struct {
	models.Order
	NextStatuses []models.OrderStatus `json:"next_statuses"`
}

type orderCreated struct {
	OrderID     string  `json:"order_id"`
	VendorID    string  `json:"vendor_id"`
	SupplierID  string  `json:"supplier_id"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
	Items       int     `json:"items"`
}

type orderStatusChanged struct {
	OrderID    string `json:"order_id"`
	VendorID   string `json:"vendor_id"`
	SupplierID string `json:"supplier_id"`
	From       string `json:"from"`
	To         string `json:"to"`
	ChangedBy  string `json:"changed_by"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	profiles    repositories.ProfileRepository
	events      *Events
	metrics     *metrics.Metrics
	log         *zap.Logger
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	profiles repositories.ProfileRepository,
	events *Events,
	m *metrics.Metrics,
	log *zap.Logger,
) *OrderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		profiles:    profiles,
		events:      events,
		metrics:     m,
		log:         log,
	}
}

// CreateOrder places a pending order for the calling vendor. Prices are taken from the
// catalogue at this moment.
func (s *OrderService) CreateOrder(ctx context.Context, userID string, in PlaceOrderInput) (*models.Order, error) {
	in.DeliveryAddress = strings.TrimSpace(in.DeliveryAddress)
	if err := validateInput(in); err != nil {
		return nil, err
	}
	vendor, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if vendor.Role != models.RoleVendor {
		return nil, errs.Forbidden("only vendors can place orders")
	}
	supplier, err := s.profiles.GetByID(ctx, in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier.Role != models.RoleSupplier {
		return nil, errs.Validation("%s is not a supplier", in.SupplierID)
	}

	ids := make([]string, 0, len(in.Items))
	seen := make(map[string]bool, len(in.Items))
	for _, item := range in.Items {
		if seen[item.ProductID] {
			return nil, errs.Validation("product %s listed more than once", item.ProductID)
		}
		seen[item.ProductID] = true
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		product, ok := products[item.ProductID]
		switch {
		case !ok:
			return nil, errs.Validation("product %s not found", item.ProductID)
		case product.SupplierID != supplier.ID:
			return nil, errs.Validation("product %s is not sold by supplier %s", product.Name, supplier.BusinessName)
		case !product.IsAvailable:
			return nil, errs.Validation("product %s is not available", product.Name)
		case item.Quantity < product.MinimumOrderQuantity:
			return nil, errs.Validation("minimum order for %s is %d %s", product.Name, product.MinimumOrderQuantity, product.Unit)
		case item.Quantity > product.StockQuantity:
			return nil, errs.Validation("insufficient stock for product %s (requested: %d, available: %d)", product.Name, item.Quantity, product.StockQuantity)
		}

		unit := decimal.NewFromFloat(product.PricePerUnit)
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		total = total.Add(line)
		items = append(items, models.OrderItem{
			ProductID:  product.ID,
			Quantity:   item.Quantity,
			UnitPrice:  product.PricePerUnit,
			TotalPrice: line.InexactFloat64(),
		})
	}

	order := &models.Order{
		VendorID:        vendor.ID,
		SupplierID:      supplier.ID,
		Status:          models.StatusPending,
		TotalAmount:     total.Round(2).InexactFloat64(),
		DeliveryAddress: in.DeliveryAddress,
		DeliveryDate:    in.DeliveryDate,
		Notes:           in.Notes,
		Items:           items,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	s.log.Info("order created", zap.String("order_id", order.ID), zap.String("vendor_id", vendor.ID))

	s.events.Emit(ctx, EventOrderCreated, orderCreated{
		OrderID:     order.ID,
		VendorID:    order.VendorID,
		SupplierID:  order.SupplierID,
		Status:      string(order.Status),
		TotalAmount: order.TotalAmount,
		Items:       len(order.Items),
	})
	return order, nil
}

// GetAllOrders lists the orders the caller takes part in, newest first.
func (s *OrderService) GetAllOrders(ctx context.Context, userID, status string) ([]models.Order, error) {
	caller, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	filter := repositories.OrderFilter{}
	if status != "" {
		st, err := lifecycle.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	if caller.Role == models.RoleSupplier {
		filter.SupplierID = caller.ID
	} else {
		filter.VendorID = caller.ID
	}
	return s.orderRepo.List(ctx, filter)
}

// GetOrderByID returns an order the caller takes part in, with the moves open to them.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, id string) (*OrderView, error) {
	caller, order, err := s.participantOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return view(order, caller.Role), nil
}

// UpdateOrderStatus moves an order along its lifecycle on behalf of the caller.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, userID, id, status string) (*OrderView, error) {
	target, err := lifecycle.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	caller, order, err := s.participantOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	from := order.Status
	if err := lifecycle.Check(from, target, caller.Role); err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.Transition(ctx, id, from, target, target == models.StatusConfirmed)
	if errors.Is(err, repositories.ErrStatusChanged) {
		current, getErr := s.orderRepo.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		return nil, &lifecycle.InvalidTransitionError{From: current.Status, To: target, Role: caller.Role}
	}
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransition(string(from), string(target))
	s.log.Info("order status changed",
		zap.String("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(target)),
	)
	s.events.Emit(ctx, EventOrderStatusChanged, orderStatusChanged{
		OrderID:    updated.ID,
		VendorID:   updated.VendorID,
		SupplierID: updated.SupplierID,
		From:       string(from),
		To:         string(target),
		ChangedBy:  caller.ID,
	})
	return view(updated, caller.Role), nil
}

func (s *OrderService) participantOrder(ctx context.Context, userID, id string) (*models.Profile, *models.Order, error) {
	caller, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, nil, err
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !order.HasParticipant(caller.ID) {
		return nil, nil, errs.NotFound("order with ID %s not found", id)
	}
	return caller, order, nil
}

func view(o *models.Order, role models.Role) *OrderView {
	return &OrderView{Order: *o, NextStatuses: lifecycle.Allowed(o.Status, role)}
}
