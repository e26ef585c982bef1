package bookingRepo

import (
	"context"

	"fixit/models"
)

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	// Insert stores a new booking, assigning createdAt and version 1.
	Insert(ctx context.Context, booking *models.Booking) error
	// GetByID retrieves a booking; repository.ErrNotFound when absent.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// CompareAndSetStatus moves the booking to next only if it still has the
	// expected status and version. A lost race yields repository.ErrConflict.
	CompareAndSetStatus(ctx context.Context, id string, expected models.BookingStatus, expectedVersion int64, next models.BookingStatus) (*models.Booking, error)
	// Watch emits the full collection on subscribe and after every change.
	Watch(ctx context.Context, emit func([]models.Booking)) error
}
