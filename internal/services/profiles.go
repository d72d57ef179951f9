package services

import (
	"context"
	"errors"

	"mandi/internal/errs"
	"mandi/internal/models"
	"mandi/internal/repositories"
)

// currentProfile resolves the marketplace profile of an authenticated user.
func currentProfile(ctx context.Context, profiles repositories.ProfileRepository, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, errs.Unauthorized("missing user")
	}
	p, err := profiles.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, errs.NotFound("no profile for the current user")
		}
		return nil, err
	}
	return p, nil
}

// summaries loads the party summaries of ids, falling back to the bare id for a
// profile that no longer resolves.
func summaries(ctx context.Context, profiles repositories.ProfileRepository, ids []string) (map[string]models.PartySummary, error) {
	found, err := profiles.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[string]models.PartySummary, len(ids))
	for _, id := range ids {
		if p, ok := found[id]; ok {
			out[id] = p.Summary()
		} else {
			out[id] = models.PartySummary{ID: id}
		}
	}
	return out, nil
}
