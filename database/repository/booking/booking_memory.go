package bookingRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fixit/database/repository"
	"fixit/models"
)

// MemoryBookingRepo keeps bookings in process memory.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]models.Booking
	feed     repository.Feed[models.Booking]
	now      func() time.Time
}

func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		bookings: make(map[string]models.Booking),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// snapshotLocked must be called with mu held.
func (r *MemoryBookingRepo) snapshotLocked() []models.Booking {
	out := make([]models.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MemoryBookingRepo) snapshot() []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *MemoryBookingRepo) Insert(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[booking.ID]; exists {
		return fmt.Errorf("error creating booking: %w", repository.ErrDuplicate)
	}
	now := r.now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1
	r.bookings[booking.ID] = *booking
	r.feed.Publish(r.snapshotLocked())
	return nil
}

func (r *MemoryBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
	}
	return &b, nil
}

func (r *MemoryBookingRepo) CompareAndSetStatus(_ context.Context, id string, expected models.BookingStatus, expectedVersion int64, next models.BookingStatus) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, repository.ErrNotFound)
	}
	if b.Status != expected || b.Version != expectedVersion {
		return nil, fmt.Errorf("booking %s status update failed (version mismatch): %w", id, repository.ErrConflict)
	}
	b.Status = next
	b.Version++
	b.UpdatedAt = r.now()
	r.bookings[id] = b
	r.feed.Publish(r.snapshotLocked())
	return &b, nil
}

func (r *MemoryBookingRepo) Watch(ctx context.Context, emit func([]models.Booking)) error {
	return repository.WatchFeed(ctx, &r.feed, r.snapshot, emit)
}
