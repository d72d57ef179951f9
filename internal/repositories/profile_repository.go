package repositories

import (
	"context"

	"mandi/internal/models"
)

// ProfileRepository defines the interface for vendor and supplier profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	ListSuppliers(ctx context.Context, verifiedOnly bool) ([]models.Profile, error)
	// AddRating folds score into the running average of a supplier's rating.
	AddRating(ctx context.Context, supplierID string, score int) (*models.Profile, error)
}
