package userRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fixit/database/repository"
	"fixit/models"
)

// MemoryUserRepo keeps actors in process memory.
type MemoryUserRepo struct {
	mu      sync.RWMutex
	actors  map[string]models.Actor
	byEmail map[string]string
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		actors:  make(map[string]models.Actor),
		byEmail: make(map[string]string),
	}
}

func cloneActor(a models.Actor) *models.Actor {
	a.Skills = append([]string(nil), a.Skills...)
	return &a
}

func (r *MemoryUserRepo) GetByID(_ context.Context, id string) (*models.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[id]
	if !ok {
		return nil, fmt.Errorf("failed to fetch actor with id %s: %w", id, repository.ErrNotFound)
	}
	return cloneActor(a), nil
}

func (r *MemoryUserRepo) GetByEmail(_ context.Context, email string) (*models.Actor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("failed to fetch actor with email %s: %w", email, repository.ErrNotFound)
	}
	return cloneActor(r.actors[id]), nil
}

func (r *MemoryUserRepo) Create(_ context.Context, actor *models.Actor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[actor.Email]; taken {
		return fmt.Errorf("failed to create actor: %w", repository.ErrDuplicate)
	}
	if _, taken := r.actors[actor.ID]; taken {
		return fmt.Errorf("failed to create actor: %w", repository.ErrDuplicate)
	}
	now := time.Now().UTC()
	actor.CreatedAt = now
	actor.UpdatedAt = now
	r.actors[actor.ID] = *cloneActor(*actor)
	r.byEmail[actor.Email] = actor.ID
	return nil
}

func (r *MemoryUserRepo) ApplyPatch(_ context.Context, id string, patch models.ProfilePatch) (*models.Actor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[id]
	if !ok {
		return nil, fmt.Errorf("actor with id %s: %w", id, repository.ErrNotFound)
	}
	patch.Apply(&a)
	a.UpdatedAt = time.Now().UTC()
	r.actors[id] = a
	return cloneActor(a), nil
}

func (r *MemoryUserRepo) SetSession(_ context.Context, id, tokenHash string, loginAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.actors[id]
	if !ok {
		return fmt.Errorf("actor with id %s: %w", id, repository.ErrNotFound)
	}
	a.TokenHash = tokenHash
	if loginAt != nil {
		t := *loginAt
		a.LastLoginAt = &t
	}
	r.actors[id] = a
	return nil
}

func (r *MemoryUserRepo) ListProviders(_ context.Context, filter models.ProviderFilter) ([]models.Actor, error) {
	r.mu.RLock()
	providers := []models.Actor{}
	for _, a := range r.actors {
		if filter.Matches(&a) {
			providers = append(providers, *cloneActor(a))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(providers, func(i, j int) bool {
		if providers[i].Rating != providers[j].Rating {
			return providers[i].Rating > providers[j].Rating
		}
		if providers[i].CompletedJobCount != providers[j].CompletedJobCount {
			return providers[i].CompletedJobCount > providers[j].CompletedJobCount
		}
		return providers[i].ID < providers[j].ID
	})
	return providers, nil
}
