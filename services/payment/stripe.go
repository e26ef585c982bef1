package payment

import (
	"context"
	"errors"
	"fmt"

	"fixit/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
)

// StripeGateway confirms a PaymentIntent synchronously.
type StripeGateway struct {
	Currency string
}

// NewStripeGateway sets the process-wide Stripe key.
func NewStripeGateway(apiKey, currency string) *StripeGateway {
	stripe.Key = apiKey
	if currency == "" {
		currency = string(stripe.CurrencyINR)
	}
	return &StripeGateway{Currency: currency}
}

// minorUnits converts whole currency units to the smallest unit Stripe expects.
func minorUnits(amount int64) int64 { return amount * 100 }

func (g *StripeGateway) Charge(ctx context.Context, amount int64, payer models.PayerContact) (string, error) {
	if payer.PaymentMethod == "" {
		return "", cancelled("no payment method was provided")
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(minorUnits(amount)),
		Currency:      stripe.String(g.Currency),
		PaymentMethod: stripe.String(payer.PaymentMethod),
		Confirm:       stripe.Bool(true),
		Description:   stripe.String("FixIt booking"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	if payer.Email != "" {
		params.ReceiptEmail = stripe.String(payer.Email)
	}
	params.AddMetadata("actorId", payer.ActorID)
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", mapStripeError(err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusProcessing:
		return pi.ID, nil
	case stripe.PaymentIntentStatusCanceled:
		return "", cancelled("payment was cancelled")
	default:
		return "", declined("payment could not be completed (status %s)", pi.Status)
	}
}

func (g *StripeGateway) Refund(ctx context.Context, reference string) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(reference)}
	params.Context = ctx
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("stripe: refund of %s failed: %w", reference, err)
	}
	return nil
}

// mapStripeError turns card errors into payer-facing failures and leaves
// everything else as a transport error.
func mapStripeError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return fmt.Errorf("stripe: %w", err)
	}
	msg := stripeErr.Msg
	if msg == "" {
		msg = "your card was declined"
	}
	switch {
	case stripeErr.Type == stripe.ErrorTypeCard:
		return declined("%s", msg)
	case stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState:
		return cancelled("%s", msg)
	case stripeErr.Type == stripe.ErrorTypeInvalidRequest:
		return declined("%s", msg)
	default:
		return fmt.Errorf("stripe: %w", err)
	}
}
