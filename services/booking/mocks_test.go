package booking_test

import (
	"context"
	"errors"
	"sync"

	bookingRepo "fixit/database/repository/booking"
	"fixit/models"
	"fixit/services/booking"
	"fixit/services/payment"
)

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []models.PushPayload
}

func (d *recordingDispatcher) Dispatch(_ context.Context, p models.PushPayload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, p)
}

func (d *recordingDispatcher) Sent() []models.PushPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.PushPayload(nil), d.sent...)
}

// failingInsertRepo stores nothing on Insert.
type failingInsertRepo struct {
	*bookingRepo.MemoryBookingRepo
}

func (r failingInsertRepo) Insert(context.Context, *models.Booking) error {
	return errors.New("write concern timeout")
}

type staticSnapshot struct {
	items []models.Booking
}

func (s staticSnapshot) Snapshot() []models.Booking { return s.items }

func (s staticSnapshot) Subscribe(ctx context.Context) <-chan []models.Booking {
	ch := make(chan []models.Booking, 1)
	ch <- s.items
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}

// refCapturingGateway records the reference of the last successful charge.
type refCapturingGateway struct {
	*payment.SimulatedGateway
	ref *string
}

func (g *refCapturingGateway) Charge(ctx context.Context, amount int64, payer models.PayerContact) (string, error) {
	ref, err := g.SimulatedGateway.Charge(ctx, amount, payer)
	if err == nil {
		*g.ref = ref
	}
	return ref, err
}

// failingCompleteStore cannot record finished keys.
type failingCompleteStore struct {
	booking.IdempotencyStore
	completeCalls int
}

func (s *failingCompleteStore) Complete(context.Context, string, string) error {
	s.completeCalls++
	return errors.New("cache write timeout")
}
