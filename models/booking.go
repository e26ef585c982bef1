package models

import "time"

// Booking is a paid engagement between a customer and a provider.
type Booking struct {
	ID               string          `bson:"id" json:"id"`
	CustomerID       string          `bson:"customerId" json:"customerId"`
	ProviderID       string          `bson:"providerId" json:"providerId"`
	CustomerName     string          `bson:"customerName" json:"customerName"`
	ProviderName     string          `bson:"providerName" json:"providerName"`
	ServiceCategory  ServiceCategory `bson:"serviceCategory" json:"serviceCategory"`
	ScheduledDate    string          `bson:"scheduledDate" json:"scheduledDate"` // YYYY-MM-DD
	ScheduledSlot    string          `bson:"scheduledSlot" json:"scheduledSlot"`
	DurationHours    int             `bson:"durationHours" json:"durationHours"`
	Status           BookingStatus   `bson:"status" json:"status"`
	TotalAmount      int64           `bson:"totalAmount" json:"totalAmount"` // frozen at creation
	Notes            string          `bson:"notes,omitempty" json:"notes,omitempty"`
	PaymentReference string          `bson:"paymentReference" json:"paymentReference"`
	Version          int64           `bson:"version" json:"version"`
	CreatedAt        time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// IsParticipant reports whether actorID is the customer or the provider of b.
func (b *Booking) IsParticipant(actorID string) bool {
	return actorID != "" && (b.CustomerID == actorID || b.ProviderID == actorID)
}

// RoleOf returns the role actorID plays in b, or "" when not a participant.
func (b *Booking) RoleOf(actorID string) Role {
	switch actorID {
	case "":
		return ""
	case b.ProviderID:
		return RoleProvider
	case b.CustomerID:
		return RoleCustomer
	}
	return ""
}

// CounterpartOf returns the other participant's id.
func (b *Booking) CounterpartOf(actorID string) string {
	if actorID == b.CustomerID {
		return b.ProviderID
	}
	return b.CustomerID
}

// BookingRequest is the customer-supplied part of a new booking.
type BookingRequest struct {
	ProviderID      string          `json:"providerId" binding:"required"`
	ServiceCategory ServiceCategory `json:"serviceCategory" binding:"required"`
	ScheduledDate   string          `json:"scheduledDate" binding:"required"`
	ScheduledSlot   string          `json:"scheduledSlot" binding:"required"`
	DurationHours   int             `json:"durationHours" binding:"required"`
	Notes           string          `json:"notes"`
	// PaymentMethod is an optional gateway-side method id.
	PaymentMethod string `json:"paymentMethod,omitempty"`

	// Set from the Idempotency-Key header.
	IdempotencyKey string `json:"-"`
}

type StatusUpdateRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}

// Earnings summarises a provider's bookings for the dashboard.
type Earnings struct {
	PendingCount      int   `json:"pendingCount"`
	ActiveCount       int   `json:"activeCount"`
	CompletedCount    int   `json:"completedCount"`
	TotalEarnings     int64 `json:"totalEarnings"`
	ThisMonthEarnings int64 `json:"thisMonthEarnings"`
	AveragePerBooking int64 `json:"averagePerBooking"`
}
