package repositories

import (
	"context"
	"errors"

	"mandi/internal/errs"
	"mandi/internal/models"

	"gorm.io/gorm"
)

// GORMProfileRepository is a GORM implementation of ProfileRepository.
type GORMProfileRepository struct {
	db *gorm.DB
}

func NewGORMProfileRepository(db *gorm.DB) *GORMProfileRepository {
	return &GORMProfileRepository{db: db}
}

func (r *GORMProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return storeErr("create profile", err)
	}
	return nil
}

func (r *GORMProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("profile with ID %s not found", id)
		}
		return nil, storeErr("get profile", err)
	}
	return &p, nil
}

func (r *GORMProfileRepository) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("profile for user %s not found", userID)
		}
		return nil, storeErr("get profile by user", err)
	}
	return &p, nil
}

// GetByIDs returns the profiles found among ids, keyed by id.
func (r *GORMProfileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]models.Profile, error) {
	out := make(map[string]models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var profiles []models.Profile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, storeErr("get profiles", err)
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

// ownerColumns are the profile columns its owner may edit. Rating, rating count and
// verification are written only by their own paths.
var ownerColumns = []string{
	"business_name", "contact_person", "phone", "email", "address", "city", "state",
	"pincode", "business_license", "gstin", "latitude", "longitude", "updated_at",
}

// Update saves the owner-editable fields of an existing profile.
func (r *GORMProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	res := r.db.WithContext(ctx).Model(profile).Select(ownerColumns).Updates(profile)
	if res.Error != nil {
		return storeErr("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("profile with ID %s not found for update", profile.ID)
	}
	return nil
}

func (r *GORMProfileRepository) ListSuppliers(ctx context.Context, verifiedOnly bool) ([]models.Profile, error) {
	q := r.db.WithContext(ctx).Where("user_type = ?", models.RoleSupplier)
	if verifiedOnly {
		q = q.Where("is_verified = ?", true)
	}
	var profiles []models.Profile
	if err := q.Order("created_at ASC").Find(&profiles).Error; err != nil {
		return nil, storeErr("list suppliers", err)
	}
	return profiles, nil
}

func (r *GORMProfileRepository) AddRating(ctx context.Context, supplierID string, score int) (*models.Profile, error) {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND user_type = ?", supplierID, models.RoleSupplier).
		Updates(map[string]any{
			"rating":        gorm.Expr("(rating * total_ratings + ?) / (total_ratings + 1)", float64(score)),
			"total_ratings": gorm.Expr("total_ratings + 1"),
		})
	if res.Error != nil {
		return nil, storeErr("add rating", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, errs.NotFound("supplier with ID %s not found", supplierID)
	}
	return r.GetByID(ctx, supplierID)
}
