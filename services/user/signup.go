package user

import (
	"context"
	"errors"
	"strings"

	"fixit/database/repository"
	"fixit/models"
	"fixit/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SignUp registers a new actor and opens a session for it.
func (s *DefaultUserService) SignUp(ctx context.Context, req models.SignUpRequest) (*AuthResponse, error) {
	logger := utils.GetLogger()

	if !req.Role.IsValid() {
		return nil, utils.NewValidationError("role must be customer or provider")
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, utils.NewValidationError("display name is required")
	}
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := VerifyPasswordComplexity(req.Password); err != nil {
		return nil, err
	}

	now := s.now()
	actor := &models.Actor{
		ID:          uuid.New().String(),
		Role:        req.Role,
		DisplayName: name,
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		City:        strings.TrimSpace(req.City),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if req.Role == models.RoleProvider {
		if !req.ServiceCategory.IsValid() {
			return nil, utils.NewValidationError("providers must choose plumbing or electrical")
		}
		if req.HourlyRate <= 0 {
			return nil, utils.NewValidationError("hourly rate must be positive")
		}
		if req.ExperienceYears < 0 {
			return nil, utils.NewValidationError("experience years cannot be negative")
		}
		actor.ServiceCategory = req.ServiceCategory
		actor.HourlyRate = req.HourlyRate
		actor.ExperienceYears = req.ExperienceYears
		actor.Description = strings.TrimSpace(req.Description)
		actor.Skills = req.Skills
		actor.Availability = true
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("SignUp: failed to hash password", zap.Error(err))
		return nil, utils.NewInternal("failed to hash password", err)
	}
	actor.PasswordHash = string(hashed)

	if err := s.Repo.Create(ctx, actor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewConflict("an account with email %s already exists", email)
		}
		return nil, storeError("sign up", err)
	}
	logger.Info("SignUp: actor registered", zap.String("actorID", actor.ID), zap.String("role", string(actor.Role)))

	return s.openSession(ctx, actor)
}
