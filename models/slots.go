package models

import "time"

// TimeSlots is the hourly booking catalogue offered to customers.
var TimeSlots = []string{
	"8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM", "5:00 PM", "6:00 PM",
}

const (
	MinDurationHours = 1
	MaxDurationHours = 8
	MaxNotesLength   = 500

	// DateLayout is the wire format of Booking.ScheduledDate.
	DateLayout = "2006-01-02"
)

func IsValidSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

// ParseScheduledDate parses a YYYY-MM-DD date as midnight in loc.
func ParseScheduledDate(date string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, loc)
}

// IsBeforeToday reports whether day falls on a calendar date earlier than now, both seen in loc.
func IsBeforeToday(day, now time.Time, loc *time.Location) bool {
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return day.In(loc).Before(today)
}
