package user

import (
	"context"

	"fixit/models"
	"fixit/utils"
)

// ListProviders returns the directory entries matching filter, best rated first.
func (s *DefaultUserService) ListProviders(ctx context.Context, filter models.ProviderFilter) ([]models.PublicProfile, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return nil, utils.NewValidationError("invalid service category %q", filter.Category)
	}
	actors, err := s.Repo.ListProviders(ctx, filter)
	if err != nil {
		return nil, storeError("list providers", err)
	}
	profiles := make([]models.PublicProfile, 0, len(actors))
	for i := range actors {
		profiles = append(profiles, actors[i].Public())
	}
	return profiles, nil
}

func (s *DefaultUserService) GetProvider(ctx context.Context, providerID string) (*models.PublicProfile, error) {
	actor, err := s.Repo.GetByID(ctx, providerID)
	if err != nil {
		return nil, storeError("get provider", err)
	}
	if !actor.IsProvider() {
		return nil, utils.NewNotFound("provider %s not found", providerID)
	}
	profile := actor.Public()
	return &profile, nil
}
