package booking

import (
	"context"
	"time"

	bookingRepo "fixit/database/repository/booking"
	userRepo "fixit/database/repository/user"
	"fixit/models"
	"fixit/services/notification"
	"fixit/services/payment"

	"go.uber.org/zap"
)

// BookingService is the booking ledger.
type BookingService interface {
	CreateBooking(ctx context.Context, customerID string, req models.BookingRequest) (*models.Booking, error)
	TransitionStatus(ctx context.Context, bookingID, actorID string, next models.BookingStatus) (*models.Booking, error)
	BookingsFor(actorID string, role models.Role) []models.Booking
	EarningsFor(providerID string, now time.Time) models.Earnings
	Subscribe(ctx context.Context, actorID string, role models.Role) <-chan []models.Booking
}

// SnapshotSource is the read side of the bookings mirror.
type SnapshotSource interface {
	Snapshot() []models.Booking
	Subscribe(ctx context.Context) <-chan []models.Booking
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo        bookingRepo.BookingRepository
	Users       userRepo.UserRepository
	Payments    payment.Gateway
	Mirror      SnapshotSource
	Notifier    notification.Dispatcher
	Idempotency IdempotencyStore
	Location    *time.Location
	Now         func() time.Time
	Logger      *zap.Logger
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DefaultBookingService) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *DefaultBookingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *DefaultBookingService) notify(ctx context.Context, p models.PushPayload) {
	if s.Notifier != nil {
		s.Notifier.Dispatch(ctx, p)
	}
}
