package booking

import (
	"context"
	"sort"
	"time"

	"fixit/models"
)

// filterFor keeps the bookings where actorID plays role, newest first.
func filterFor(all []models.Booking, actorID string, role models.Role) []models.Booking {
	out := make([]models.Booking, 0)
	for _, b := range all {
		if b.RoleOf(actorID) == role {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// BookingsFor reads the mirror; it reflects writes once the change stream delivers them.
func (s *DefaultBookingService) BookingsFor(actorID string, role models.Role) []models.Booking {
	if s.Mirror == nil {
		return []models.Booking{}
	}
	return filterFor(s.Mirror.Snapshot(), actorID, role)
}

// Subscribe streams actor-scoped snapshots until ctx ends.
func (s *DefaultBookingService) Subscribe(ctx context.Context, actorID string, role models.Role) <-chan []models.Booking {
	out := make(chan []models.Booking, 1)
	if s.Mirror == nil {
		close(out)
		return out
	}
	in := s.Mirror.Subscribe(ctx)
	go func() {
		defer close(out)
		for snap := range in {
			scoped := filterFor(snap, actorID, role)
			select {
			case out <- scoped:
				continue
			default:
			}
			select {
			case <-out:
			default:
			}
			select {
			case out <- scoped:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// EarningsFor summarises a provider's jobs. Money is counted on completed
// bookings only; the month is the one containing now in the service timezone.
func (s *DefaultBookingService) EarningsFor(providerID string, now time.Time) models.Earnings {
	var e models.Earnings
	loc := s.location()
	year, month, _ := now.In(loc).Date()

	for _, b := range s.BookingsFor(providerID, models.RoleProvider) {
		switch {
		case b.Status == models.StatusPending:
			e.PendingCount++
		case b.Status.IsActive():
			e.ActiveCount++
		case b.Status == models.StatusCompleted:
			e.CompletedCount++
			e.TotalEarnings += b.TotalAmount
			if y, m, _ := b.CreatedAt.In(loc).Date(); y == year && m == month {
				e.ThisMonthEarnings += b.TotalAmount
			}
		}
	}
	if e.CompletedCount > 0 {
		n := int64(e.CompletedCount)
		e.AveragePerBooking = (e.TotalEarnings + n/2) / n
	}
	return e
}
