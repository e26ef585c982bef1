package booking

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"fixit/database/repository"
	"fixit/models"
	"fixit/services/notification"
	"fixit/services/payment"
	"fixit/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// validateRequest checks everything that needs no remote call.
func (s *DefaultBookingService) validateRequest(req *models.BookingRequest) error {
	req.ProviderID = strings.TrimSpace(req.ProviderID)
	if req.ProviderID == "" {
		return utils.NewValidationError("provider is required")
	}
	if !req.ServiceCategory.IsValid() {
		return utils.NewValidationError("invalid service category %q", req.ServiceCategory)
	}
	day, err := models.ParseScheduledDate(req.ScheduledDate, s.location())
	if err != nil {
		return utils.NewValidationError("scheduled date must be YYYY-MM-DD")
	}
	if models.IsBeforeToday(day, s.now(), s.location()) {
		return utils.NewValidationError("scheduled date %s is in the past", req.ScheduledDate)
	}
	if !models.IsValidSlot(req.ScheduledSlot) {
		return utils.NewValidationError("unknown time slot %q", req.ScheduledSlot)
	}
	if req.DurationHours < models.MinDurationHours || req.DurationHours > models.MaxDurationHours {
		return utils.NewValidationError("duration must be between %d and %d hours", models.MinDurationHours, models.MaxDurationHours)
	}
	if utf8.RuneCountInString(req.Notes) > models.MaxNotesLength {
		return utils.NewValidationError("notes cannot exceed %d characters", models.MaxNotesLength)
	}
	return nil
}

// CreateBooking charges the customer and records a pending booking. Nothing is
// stored when the charge fails; a stored-write failure refunds the charge.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, customerID string, req models.BookingRequest) (*models.Booking, error) {
	logger := s.logger().With(zap.String("customerID", customerID))

	if err := s.validateRequest(&req); err != nil {
		return nil, err
	}

	var idemKey string
	if req.IdempotencyKey != "" && s.Idempotency != nil {
		idemKey = idempotencyKey(customerID, req.IdempotencyKey)
		existing, err := s.Idempotency.Reserve(ctx, idemKey)
		switch {
		case errors.Is(err, ErrRequestInFlight):
			return nil, utils.NewConflict("a booking with this idempotency key is still being processed")
		case err != nil:
			return nil, utils.NewRemoteUnavailable("idempotency store unavailable", err)
		case existing != "":
			logger.Info("CreateBooking: replaying idempotent request", zap.String("bookingID", existing))
			b, err := s.Repo.GetByID(ctx, existing)
			if err != nil {
				return nil, storeError(err, "booking")
			}
			return b, nil
		}
	}

	b, err := s.createBooking(ctx, customerID, req, logger)
	if idemKey != "" {
		if err != nil {
			if relErr := s.Idempotency.Release(ctx, idemKey); relErr != nil {
				logger.Warn("CreateBooking: failed to release idempotency key", zap.Error(relErr))
			}
		} else {
			s.completeIdempotency(ctx, idemKey, b.ID, logger)
		}
	}
	if err != nil {
		return nil, err
	}

	s.notify(ctx, notification.BookingCreated(b))
	return b, nil
}

func (s *DefaultBookingService) createBooking(ctx context.Context, customerID string, req models.BookingRequest, logger *zap.Logger) (*models.Booking, error) {
	customer, err := s.Users.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewUnauthorized("unknown customer")
		}
		return nil, utils.NewRemoteUnavailable("actor store unavailable", err)
	}
	if customer.Role != models.RoleCustomer {
		return nil, utils.NewUnauthorized("only customers can book services")
	}

	provider, err := s.Users.GetByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, utils.NewNotFound("provider %s not found", req.ProviderID)
		}
		return nil, utils.NewRemoteUnavailable("actor store unavailable", err)
	}
	switch {
	case !provider.IsProvider():
		return nil, utils.NewValidationError("%s is not a service provider", req.ProviderID)
	case !provider.Availability:
		return nil, utils.NewValidationError("%s is not taking bookings right now", provider.DisplayName)
	case !provider.Offers(req.ServiceCategory):
		return nil, utils.NewValidationError("%s does not offer %s", provider.DisplayName, req.ServiceCategory)
	}

	total := provider.HourlyRate * int64(req.DurationHours)

	payer := models.PayerFrom(customer)
	payer.PaymentMethod = req.PaymentMethod
	ref, err := s.Payments.Charge(ctx, total, payer)
	if err != nil {
		if payment.IsPaymentError(err) {
			logger.Info("CreateBooking: charge rejected", zap.Error(err))
			return nil, utils.NewPaymentFailed(err)
		}
		logger.Error("CreateBooking: payment gateway unreachable", zap.Error(err))
		return nil, utils.NewRemoteUnavailable("payment gateway unavailable", err)
	}

	b := &models.Booking{
		ID:               uuid.New().String(),
		CustomerID:       customer.ID,
		ProviderID:       provider.ID,
		CustomerName:     customer.DisplayName,
		ProviderName:     provider.DisplayName,
		ServiceCategory:  req.ServiceCategory,
		ScheduledDate:    req.ScheduledDate,
		ScheduledSlot:    req.ScheduledSlot,
		DurationHours:    req.DurationHours,
		Status:           models.StatusPending,
		TotalAmount:      total,
		Notes:            req.Notes,
		PaymentReference: ref,
	}
	if err := s.Repo.Insert(ctx, b); err != nil {
		logger.Error("CreateBooking: failed to store booking, refunding", zap.String("paymentReference", ref), zap.Error(err))
		if refundErr := s.Payments.Refund(context.WithoutCancel(ctx), ref); refundErr != nil {
			logger.Error("CreateBooking: refund failed", zap.String("paymentReference", ref), zap.Error(refundErr))
		}
		return nil, utils.NewRemoteUnavailable("failed to store booking, the charge has been reversed", err)
	}

	logger.Info("CreateBooking: booking created",
		zap.String("bookingID", b.ID),
		zap.String("providerID", b.ProviderID),
		zap.Int64("totalAmount", b.TotalAmount))
	return b, nil
}

// completeIdempotency records the booking under key, retrying once. A key that
// still cannot be recorded is released so retries are not stuck behind it.
func (s *DefaultBookingService) completeIdempotency(ctx context.Context, key, bookingID string, logger *zap.Logger) {
	ctx = context.WithoutCancel(ctx)
	err := s.Idempotency.Complete(ctx, key, bookingID)
	if err == nil {
		return
	}
	logger.Warn("CreateBooking: failed to record idempotency key, retrying", zap.Error(err))
	if err = s.Idempotency.Complete(ctx, key, bookingID); err == nil {
		return
	}
	logger.Error("CreateBooking: releasing unrecorded idempotency key", zap.String("bookingID", bookingID), zap.Error(err))
	if relErr := s.Idempotency.Release(ctx, key); relErr != nil {
		logger.Warn("CreateBooking: failed to release idempotency key", zap.Error(relErr))
	}
}
