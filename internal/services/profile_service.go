package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"mandi/internal/errs"
	"mandi/internal/models"
	"mandi/internal/ranking"
	"mandi/internal/repositories"

	"go.uber.org/zap"
)

// ProfileInput carries the business fields a user controls.
type ProfileInput struct {
	Role            models.Role `json:"user_type" validate:"required,oneof=vendor supplier"`
	BusinessName    string      `json:"business_name" validate:"required,min=2,max=150"`
	ContactPerson   string      `json:"contact_person" validate:"required,min=2,max=100"`
	Phone           string      `json:"phone" validate:"omitempty,max=20"`
	Email           string      `json:"email" validate:"omitempty,email"`
	Address         string      `json:"address" validate:"omitempty,max=500"`
	City            string      `json:"city" validate:"omitempty,max=80"`
	State           string      `json:"state" validate:"omitempty,max=80"`
	Pincode         string      `json:"pincode" validate:"omitempty,max=12"`
	BusinessLicense string      `json:"business_license" validate:"omitempty,max=100"`
	GSTIN           string      `json:"gstin" validate:"omitempty,max=20"`
	Latitude        *float64    `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float64    `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (in ProfileInput) apply(p *models.Profile) {
	p.BusinessName = strings.TrimSpace(in.BusinessName)
	p.ContactPerson = strings.TrimSpace(in.ContactPerson)
	p.Phone = in.Phone
	p.Email = in.Email
	p.Address = in.Address
	p.City = in.City
	p.State = in.State
	p.Pincode = in.Pincode
	p.BusinessLicense = in.BusinessLicense
	p.GSTIN = in.GSTIN
}

// ProfileService manages vendor and supplier profiles.
type ProfileService struct {
	profiles repositories.ProfileRepository
	log      *zap.Logger
}

func NewProfileService(profiles repositories.ProfileRepository, log *zap.Logger) *ProfileService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProfileService{profiles: profiles, log: log}
}

// Create registers the caller as a vendor or supplier. A user holds one profile.
func (s *ProfileService) Create(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, errs.Validation("latitude and longitude must be provided together")
	}
	_, err := s.profiles.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		return nil, errs.Conflict("profile already exists for this user")
	case !errors.Is(err, errs.ErrNotFound):
		return nil, err
	}

	p := &models.Profile{UserID: userID, Role: in.Role, Latitude: in.Latitude, Longitude: in.Longitude}
	in.apply(p)
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info("profile created", zap.String("profile_id", p.ID), zap.String("role", string(p.Role)))
	return p, nil
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*models.Profile, error) {
	return currentProfile(ctx, s.profiles, userID)
}

func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.GetByID(ctx, id)
}

// UpdateMe rewrites the caller's business fields. The role is fixed at creation.
func (s *ProfileService) UpdateMe(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	p, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = p.Role
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if in.Role != p.Role {
		return nil, errs.Validation("user_type cannot be changed")
	}
	in.apply(p)
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProfileService) UpdateLocation(ctx context.Context, userID string, loc ranking.Coordinates) (*models.Profile, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	p, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	lat, lng := loc.Lat, loc.Lng
	p.Latitude, p.Longitude = &lat, &lng
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Rate records a vendor's score for a supplier and returns the updated supplier.
func (s *ProfileService) Rate(ctx context.Context, userID, supplierID string, score int) (*models.Profile, error) {
	if score < 1 || score > 5 {
		return nil, errs.Fields("validation failed", map[string]string{"score": "must be between 1 and 5"})
	}
	caller, err := currentProfile(ctx, s.profiles, userID)
	if err != nil {
		return nil, err
	}
	if caller.Role != models.RoleVendor {
		return nil, errs.Forbidden("only vendors can rate suppliers")
	}
	supplier, err := s.profiles.AddRating(ctx, supplierID, score)
	if err != nil {
		return nil, err
	}
	supplier.Rating = math.Round(supplier.Rating*100) / 100
	return supplier, nil
}
