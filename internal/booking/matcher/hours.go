package matcher

import "time"

// BusinessHours describes the night window during which opted-out translators
// must not be pushed, and the start of the business day that delayed pushes
// wait for.
type BusinessHours struct {
	NightStartHour int // inclusive, local time
	NightEndHour   int // exclusive
	DayStartHour   int
}

// DefaultBusinessHours matches the production defaults: night from 22:00 to
// 07:00, business day starts 09:00.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{NightStartHour: 22, NightEndHour: 7, DayStartHour: 9}
}

// IsNight reports whether t falls inside the night window.
func (b BusinessHours) IsNight(t time.Time) bool {
	h := t.Hour()
	if b.NightStartHour > b.NightEndHour {
		// window wraps midnight
		return h >= b.NightStartHour || h < b.NightEndHour
	}
	return h >= b.NightStartHour && h < b.NightEndHour
}

// NextBusinessTime returns the next business-day start at or after t. A
// delayed push is scheduled for this instant.
func (b BusinessHours) NextBusinessTime(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), b.DayStartHour, 0, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
