package models

import (
	"fmt"
	"time"
)

// SlotStatus classifies one slot in the availability model.
type SlotStatus string

const (
	SlotAvailable         SlotStatus = "available"
	SlotBooked            SlotStatus = "booked"
	SlotVisitorRestricted SlotStatus = "visitor_restricted"
)

// BookingSlot is one court's time range on one date. Identity is
// (court, date, start, end); a slot is never mutated after construction.
type BookingSlot struct {
	Court      int        `bson:"court" json:"court"`                                 // 1..CourtCount, leftmost grid column = 1
	Date       string     `bson:"date" json:"date"`                                   // e.g. "2025-02-25"
	Start      int        `bson:"start" json:"start"`                                 // minutes from midnight (e.g., 840 for 2:00 PM)
	End        int        `bson:"end" json:"end"`                                     // minutes from midnight
	Status     SlotStatus `bson:"status" json:"status"`                               // available, booked, visitor_restricted
	SourceText string     `bson:"sourceText,omitempty" json:"sourceText,omitempty"`   // raw cell text this slot was extracted from
}

// RangesOverlap reports whether two half-open minute ranges conflict.
// Touching endpoints (end1 == start2) do not count as overlapping.
func RangesOverlap(start1, end1, start2, end2 int) bool {
	return start1 < end2 && start2 < end1
}

// Overlaps reports whether two slots on the same court and date conflict.
func (s BookingSlot) Overlaps(other BookingSlot) bool {
	if s.Court != other.Court || s.Date != other.Date {
		return false
	}
	return RangesOverlap(s.Start, s.End, other.Start, other.End)
}

// DurationMin returns the slot length in minutes.
func (s BookingSlot) DurationMin() int {
	return s.End - s.Start
}

// Label renders the slot the way it is reported to users,
// e.g. "Court #3 at 2:00 PM–3:00 PM on 2025-02-25".
func (s BookingSlot) Label() string {
	return fmt.Sprintf("Court #%d at %s–%s on %s", s.Court, FormatMinutes(s.Start), FormatMinutes(s.End), s.Date)
}

// FormatMinutes renders minutes-from-midnight on a 12-hour clock ("2:00 PM").
func FormatMinutes(m int) string {
	h := (m / 60) % 24
	min := m % 60
	suffix := "AM"
	if h >= 12 {
		suffix = "PM"
	}
	h12 := h % 12
	if h12 == 0 {
		h12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", h12, min, suffix)
}

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses a "YYYY-MM-DD" date in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// FormatDate renders a time as its calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
