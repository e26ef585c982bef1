package models

// BookingStatus is a step in the booking lifecycle.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusOngoing   BookingStatus = "ongoing"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var either = []Role{RoleCustomer, RoleProvider}

// bookingTransitions lists every legal edge and the roles allowed to take it.
var bookingTransitions = map[BookingStatus]map[BookingStatus][]Role{
	StatusPending: {
		StatusConfirmed: {RoleProvider},
		StatusCancelled: either,
	},
	StatusConfirmed: {
		StatusOngoing:   {RoleProvider},
		StatusCancelled: either,
	},
	StatusOngoing: {
		StatusCompleted: either,
	},
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusOngoing, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsActive covers work that is agreed but not finished.
func (s BookingStatus) IsActive() bool {
	return s == StatusConfirmed || s == StatusOngoing
}

// CanTransition reports whether from -> to is an edge of the lifecycle.
func CanTransition(from, to BookingStatus) bool {
	_, ok := bookingTransitions[from][to]
	return ok
}

// RolePermitted reports whether role may take the from -> to edge.
func RolePermitted(from, to BookingStatus, role Role) bool {
	for _, r := range bookingTransitions[from][to] {
		if r == role {
			return true
		}
	}
	return false
}
