package models

// Push notification kinds.
const (
	PushBookingCreated = "booking_created"
	PushBookingStatus  = "booking_status"
	PushNewMessage     = "new_message"
)

// PushPayload is the queued description of a push to one actor.
type PushPayload struct {
	ActorID string            `json:"actorId"`
	Kind    string            `json:"kind"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
}
