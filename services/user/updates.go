package user

import (
	"context"
	"strings"

	"fixit/models"
	"fixit/utils"

	"go.uber.org/zap"
)

// GetActor returns the full record of the actor.
func (s *DefaultUserService) GetActor(ctx context.Context, actorID string) (*models.Actor, error) {
	actor, err := s.Repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, storeError("get actor", err)
	}
	return actor, nil
}

// UpdateProfile applies a self-service edit. Rating and job counts are not editable.
func (s *DefaultUserService) UpdateProfile(ctx context.Context, actorID string, patch models.ProfilePatch) (*models.Actor, error) {
	if patch.IsEmpty() {
		return nil, utils.NewValidationError("no fields to update")
	}
	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		return nil, utils.NewValidationError("display name cannot be empty")
	}

	current, err := s.Repo.GetByID(ctx, actorID)
	if err != nil {
		return nil, storeError("update profile", err)
	}

	if patch.TouchesProviderFields() {
		if !current.IsProvider() {
			return nil, utils.NewValidationError("only providers can edit service details")
		}
		if patch.ServiceCategory != nil && !patch.ServiceCategory.IsValid() {
			return nil, utils.NewValidationError("invalid service category %q", *patch.ServiceCategory)
		}
		if patch.HourlyRate != nil && *patch.HourlyRate <= 0 {
			return nil, utils.NewValidationError("hourly rate must be positive")
		}
		if patch.ExperienceYears != nil && *patch.ExperienceYears < 0 {
			return nil, utils.NewValidationError("experience years cannot be negative")
		}
	}

	updated, err := s.Repo.ApplyPatch(ctx, actorID, patch)
	if err != nil {
		return nil, storeError("update profile", err)
	}
	utils.GetLogger().Info("UpdateProfile: profile updated", zap.String("actorID", actorID))

	if updated.TokenHash != "" {
		s.publish(actorID, updated)
	}
	return updated, nil
}
