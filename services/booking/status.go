package booking

import (
	"context"

	"fixit/models"
	"fixit/services/notification"
	"fixit/utils"

	"go.uber.org/zap"
)

// TransitionStatus moves a booking along its lifecycle on behalf of actorID.
// The write only lands if nobody changed the booking since it was read.
func (s *DefaultBookingService) TransitionStatus(ctx context.Context, bookingID, actorID string, next models.BookingStatus) (*models.Booking, error) {
	if !next.IsValid() {
		return nil, utils.NewValidationError("unknown status %q", next)
	}

	current, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, storeError(err, "booking")
	}

	role := current.RoleOf(actorID)
	if role == "" {
		return nil, utils.NewUnauthorized("you are not a participant in this booking")
	}
	if !models.CanTransition(current.Status, next) {
		return nil, utils.NewInvalidTransition("cannot move a %s booking to %s", current.Status, next)
	}
	if !models.RolePermitted(current.Status, next, role) {
		return nil, utils.NewUnauthorized("a %s cannot move a %s booking to %s", role, current.Status, next)
	}

	updated, err := s.Repo.CompareAndSetStatus(ctx, bookingID, current.Status, current.Version, next)
	if err != nil {
		return nil, storeError(err, "booking")
	}

	s.logger().Info("TransitionStatus: booking updated",
		zap.String("bookingID", bookingID),
		zap.String("actorID", actorID),
		zap.String("from", string(current.Status)),
		zap.String("to", string(next)))

	s.notify(ctx, notification.BookingStatusChanged(updated, updated.CounterpartOf(actorID)))
	return updated, nil
}
