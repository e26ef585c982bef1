package user

import (
	"context"
	"time"

	userRepo "fixit/database/repository/user"
	"fixit/models"
)

type UserService interface {
	// Identity
	SignUp(ctx context.Context, req models.SignUpRequest) (*AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*AuthResponse, error)
	SignOut(ctx context.Context, actorID string) error
	Authenticate(ctx context.Context, token string) (string, models.Role, error)
	Observe(ctx context.Context, actorID string) <-chan models.SessionEvent

	// Profile
	GetActor(ctx context.Context, actorID string) (*models.Actor, error)
	UpdateProfile(ctx context.Context, actorID string, patch models.ProfilePatch) (*models.Actor, error)

	// Provider directory
	ListProviders(ctx context.Context, filter models.ProviderFilter) ([]models.PublicProfile, error)
	GetProvider(ctx context.Context, providerID string) (*models.PublicProfile, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Sessions SessionStore
	Hub      *SessionHub
	TokenTTL time.Duration
	Now      func() time.Time
}

// AuthResponse is returned by sign-up and sign-in.
type AuthResponse struct {
	Token string        `json:"token"`
	Actor *models.Actor `json:"actor"`
	Route string        `json:"route"`
}

func (s *DefaultUserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DefaultUserService) tokenTTL() time.Duration {
	if s.TokenTTL <= 0 {
		return 30 * 24 * time.Hour
	}
	return s.TokenTTL
}
