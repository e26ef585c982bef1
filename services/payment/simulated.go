package payment

import (
	"context"
	"sync"

	"fixit/models"

	"github.com/google/uuid"
)

// Magic payment methods understood by the simulated gateway.
const (
	SimulatedDeclineMethod = "pm_card_chargeDeclined"
	SimulatedCancelMethod  = "pm_cancelled"
)

// SimulatedGateway approves every charge except the magic failure methods.
type SimulatedGateway struct {
	mu       sync.Mutex
	charges  map[string]int64
	refunded map[string]bool
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{charges: make(map[string]int64), refunded: make(map[string]bool)}
}

func (g *SimulatedGateway) Charge(ctx context.Context, amount int64, payer models.PayerContact) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch payer.PaymentMethod {
	case SimulatedDeclineMethod:
		return "", declined("your card was declined")
	case SimulatedCancelMethod:
		return "", cancelled("payment was cancelled")
	}

	ref := "sim_" + uuid.NewString()
	g.mu.Lock()
	g.charges[ref] = amount
	g.mu.Unlock()
	return ref, nil
}

func (g *SimulatedGateway) Refund(_ context.Context, reference string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunded[reference] = true
	return nil
}

// Charged returns the amount captured under ref.
func (g *SimulatedGateway) Charged(ref string) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amount, ok := g.charges[ref]
	return amount, ok
}

func (g *SimulatedGateway) Refunded(ref string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.refunded[ref]
}
