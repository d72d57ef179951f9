package services

import (
	"context"
	"strings"

	"mandi/internal/config"
	"mandi/internal/errs"
	"mandi/internal/metrics"
	"mandi/internal/models"
	"mandi/internal/ranking"
	"mandi/internal/repositories"

	"golang.org/x/text/cases"
)

// NearbyQuery is a supplier search. Nil coordinates fall back to the caller's stored
// location and a nil radius to the configured default.
type NearbyQuery struct {
	Lat      *float64
	Lng      *float64
	RadiusKm *float64
	Sort     string
	Category string
	Query    string
}

// SupplierResult is a ranked supplier with its available products.
type SupplierResult struct {
	ranking.Ranked
	DistanceKnown bool             `json:"distance_known"`
	Products      []models.Product `json:"products"`
}

// DiscoveryService finds suppliers around a vendor.
type DiscoveryService struct {
	profiles repositories.ProfileRepository
	products repositories.ProductRepository
	cfg      config.DiscoveryConfig
	metrics  *metrics.Metrics
}

func NewDiscoveryService(profiles repositories.ProfileRepository, products repositories.ProductRepository, cfg config.DiscoveryConfig, m *metrics.Metrics) *DiscoveryService {
	return &DiscoveryService{profiles: profiles, products: products, cfg: cfg, metrics: m}
}

func (s *DiscoveryService) Nearby(ctx context.Context, userID string, q NearbyQuery) ([]SupplierResult, error) {
	sortKey, err := ranking.ParseSortKey(q.Sort)
	if err != nil {
		return nil, err
	}
	origin, err := s.origin(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	radius := s.cfg.RadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	if origin == nil {
		if sortKey == ranking.ByDistance || (q.RadiusKm != nil && *q.RadiusKm > 0) {
			return nil, errs.Validation("location required: pass lat and lng or set a profile location")
		}
	}

	suppliers, err := s.profiles.ListSuppliers(ctx, s.cfg.VerifiedOnly)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(suppliers))
	for i, p := range suppliers {
		ids[i] = p.ID
	}
	products, err := s.products.List(ctx, repositories.ProductFilter{SupplierIDs: ids, AvailableOnly: true})
	if err != nil {
		return nil, err
	}
	bySupplier := make(map[string][]models.Product, len(suppliers))
	for _, p := range products {
		bySupplier[p.SupplierID] = append(bySupplier[p.SupplierID], p)
	}

	suppliers = filterSuppliers(suppliers, bySupplier, q.Category, q.Query)

	var ranked []ranking.Ranked
	if origin != nil {
		ranked, err = ranking.Rank(origin, suppliers, ranking.Options{RadiusKm: radius, Sort: sortKey})
	} else {
		ranked, err = ranking.Order(suppliers, sortKey)
	}
	if err != nil {
		return nil, err
	}

	out := make([]SupplierResult, len(ranked))
	for i, r := range ranked {
		prods := bySupplier[r.Supplier.ID]
		if prods == nil {
			prods = []models.Product{}
		}
		out[i] = SupplierResult{Ranked: r, DistanceKnown: r.DistanceKnown(), Products: prods}
	}
	s.metrics.SupplierSearch(string(sortKey), len(out))
	return out, nil
}

func (s *DiscoveryService) origin(ctx context.Context, userID string, q NearbyQuery) (*ranking.Coordinates, error) {
	if q.Lat != nil || q.Lng != nil {
		if q.Lat == nil || q.Lng == nil {
			return nil, errs.Validation("lat and lng must be provided together")
		}
		c := &ranking.Coordinates{Lat: *q.Lat, Lng: *q.Lng}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	}
	p, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	return ranking.LocationOf(p), nil
}

// filterSuppliers keeps suppliers offering categoryID and matching query against the
// business name, the city or one of their product names, case-insensitively.
func filterSuppliers(suppliers []models.Profile, products map[string][]models.Product, categoryID, query string) []models.Profile {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))
	if categoryID == "" && needle == "" {
		return suppliers
	}

	out := make([]models.Profile, 0, len(suppliers))
	for _, sup := range suppliers {
		prods := products[sup.ID]
		if categoryID != "" && !offersCategory(prods, categoryID) {
			continue
		}
		if needle != "" && !matches(fold, needle, sup, prods) {
			continue
		}
		out = append(out, sup)
	}
	return out
}

func offersCategory(prods []models.Product, categoryID string) bool {
	for _, p := range prods {
		if p.CategoryID == categoryID {
			return true
		}
	}
	return false
}

func matches(fold cases.Caser, needle string, sup models.Profile, prods []models.Product) bool {
	if strings.Contains(fold.String(sup.BusinessName), needle) || strings.Contains(fold.String(sup.City), needle) {
		return true
	}
	for _, p := range prods {
		if strings.Contains(fold.String(p.Name), needle) {
			return true
		}
	}
	return false
}
