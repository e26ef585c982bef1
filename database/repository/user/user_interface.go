package userRepo

import (
	"context"
	"time"

	"fixit/models"
)

// UserRepository defines methods for actor data access.
type UserRepository interface {
	// GetByID retrieves an actor by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Actor, error)
	// GetByEmail retrieves an actor by email; repository.ErrNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.Actor, error)
	// Create inserts a new actor; repository.ErrDuplicate when the email is taken.
	Create(ctx context.Context, actor *models.Actor) error
	// ApplyPatch sets the patched profile fields and returns the updated actor.
	ApplyPatch(ctx context.Context, id string, patch models.ProfilePatch) (*models.Actor, error)
	// SetSession stores the active token hash; an empty hash clears it.
	SetSession(ctx context.Context, id, tokenHash string, loginAt *time.Time) error
	// ListProviders returns providers matching filter, best rated first.
	ListProviders(ctx context.Context, filter models.ProviderFilter) ([]models.Actor, error)
}
