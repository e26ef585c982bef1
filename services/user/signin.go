package user

import (
	"context"
	"errors"

	"fixit/database/repository"
	"fixit/models"
	"fixit/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SignIn verifies credentials and replaces any previous session of the actor.
func (s *DefaultUserService) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, utils.NewUnauthorized("invalid email or password")
	}

	actor, err := s.Repo.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewUnauthorized("invalid email or password")
		}
		return nil, storeError("sign in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(actor.PasswordHash), []byte(password)); err != nil {
		return nil, utils.NewUnauthorized("invalid email or password")
	}

	return s.openSession(ctx, actor)
}

// openSession issues a token, records its hash and announces the new current actor.
func (s *DefaultUserService) openSession(ctx context.Context, actor *models.Actor) (*AuthResponse, error) {
	logger := utils.GetLogger()

	token, err := utils.GenerateToken(actor.ID, string(actor.Role), s.tokenTTL())
	if err != nil {
		logger.Error("openSession: failed to sign token", zap.Error(err))
		return nil, utils.NewInternal("failed to generate token", err)
	}
	hash := utils.HashToken(token)
	loginAt := s.now()

	if err := s.Repo.SetSession(ctx, actor.ID, hash, &loginAt); err != nil {
		return nil, storeError("sign in", err)
	}
	actor.TokenHash = hash
	actor.LastLoginAt = &loginAt

	if s.Sessions != nil {
		if err := s.Sessions.Save(ctx, actor.ID, hash, s.tokenTTL()); err != nil {
			// The repository copy is authoritative; the cache is refilled on first use.
			logger.Warn("openSession: failed to cache session", zap.String("actorID", actor.ID), zap.Error(err))
		}
	}

	s.publish(actor.ID, actor)
	logger.Info("openSession: actor signed in", zap.String("actorID", actor.ID))
	return &AuthResponse{Token: token, Actor: actor, Route: models.RouteFor(actor)}, nil
}

// SignOut invalidates the actor's current token. The stored hash is cleared
// before the cache so a concurrent Authenticate cannot refill it.
func (s *DefaultUserService) SignOut(ctx context.Context, actorID string) error {
	if err := s.Repo.SetSession(ctx, actorID, "", nil); err != nil {
		return storeError("sign out", err)
	}
	if s.Sessions != nil {
		if err := s.Sessions.Delete(ctx, actorID); err != nil {
			utils.GetLogger().Warn("SignOut: failed to drop cached session", zap.String("actorID", actorID), zap.Error(err))
		}
	}
	s.publish(actorID, nil)
	return nil
}

// Authenticate resolves a bearer token to the actor it was issued to. The
// cached hash is checked first and the repository is the fallback.
func (s *DefaultUserService) Authenticate(ctx context.Context, token string) (string, models.Role, error) {
	logger := utils.GetLogger()

	actorID, role, err := utils.ExtractClaims(token)
	if err != nil {
		return "", "", utils.NewUnauthorized("invalid or expired token")
	}
	hash := utils.HashToken(token)

	if s.Sessions != nil {
		cached, err := s.Sessions.Get(ctx, actorID)
		switch {
		case err == nil && cached == hash:
			return actorID, models.Role(role), nil
		case err == nil:
			return "", "", utils.NewUnauthorized("session has been replaced")
		case !errors.Is(err, ErrSessionMiss):
			logger.Warn("Authenticate: session cache unavailable", zap.Error(err))
		}
	}

	actor, err := s.Repo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", "", utils.NewUnauthorized("unknown actor")
		}
		return "", "", storeError("authenticate", err)
	}
	if actor.TokenHash == "" || actor.TokenHash != hash {
		return "", "", utils.NewUnauthorized("session expired, please sign in again")
	}

	if s.Sessions != nil {
		if err := s.Sessions.Save(ctx, actorID, hash, s.tokenTTL()); err != nil {
			logger.Warn("Authenticate: failed to refill session cache", zap.Error(err))
		}
	}
	return actor.ID, actor.Role, nil
}

// Observe streams the current actor of actorID's session, starting with the
// present state.
func (s *DefaultUserService) Observe(ctx context.Context, actorID string) <-chan models.SessionEvent {
	var seed models.SessionEvent
	actor, err := s.Repo.GetByID(ctx, actorID)
	if err != nil || actor.TokenHash == "" {
		seed = models.SessionEvent{Route: models.RouteOnboarding}
	} else {
		seed = models.SessionEvent{Actor: actor, Route: models.RouteFor(actor)}
	}
	if s.Hub == nil {
		ch := make(chan models.SessionEvent, 1)
		ch <- seed
		go func() {
			<-ctx.Done()
			close(ch)
		}()
		return ch
	}
	return s.Hub.Subscribe(ctx, actorID, &seed)
}

func (s *DefaultUserService) publish(actorID string, actor *models.Actor) {
	if s.Hub == nil {
		return
	}
	s.Hub.Publish(actorID, models.SessionEvent{Actor: actor, Route: models.RouteFor(actor)})
}
