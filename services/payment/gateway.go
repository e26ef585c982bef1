package payment

import (
	"context"
	"errors"
	"fmt"

	"fixit/models"
)

// Gateway charges a customer once per booking.
type Gateway interface {
	// Charge collects amount (whole currency units) and returns a confirmation token.
	Charge(ctx context.Context, amount int64, payer models.PayerContact) (string, error)
	// Refund reverses a charge whose booking could not be stored.
	Refund(ctx context.Context, reference string) error
}

// FailureKind distinguishes a declined charge from one the payer abandoned.
type FailureKind string

const (
	Declined  FailureKind = "PaymentDeclined"
	Cancelled FailureKind = "PaymentCancelled"
)

// PaymentError carries the gateway's own message for the payer.
type PaymentError struct {
	Kind    FailureKind
	Message string
}

func (e *PaymentError) Error() string { return e.Message }

func declined(format string, args ...any) error {
	return &PaymentError{Kind: Declined, Message: fmt.Sprintf(format, args...)}
}

func cancelled(format string, args ...any) error {
	return &PaymentError{Kind: Cancelled, Message: fmt.Sprintf(format, args...)}
}

// IsPaymentError reports whether err is a payer-facing failure rather than a transport error.
func IsPaymentError(err error) bool {
	var pe *PaymentError
	return errors.As(err, &pe)
}
