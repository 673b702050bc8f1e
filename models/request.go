package models

// TimeWindow is a half-open acceptable range for a slot's start time.
type TimeWindow struct {
	Start int `bson:"start" json:"start"` // minutes from midnight, inclusive
	End   int `bson:"end" json:"end"`     // minutes from midnight, exclusive
}

// Midpoint returns the center of the window, used for ranking alternatives.
func (w TimeWindow) Midpoint() int {
	return (w.Start + w.End) / 2
}

// Contains reports whether a start time falls inside the window.
func (w TimeWindow) Contains(minute int) bool {
	return minute >= w.Start && minute < w.End
}

// BookingRequest is the structured constraint set parsed from free text.
// Every field is optional; nil means "unconstrained".
type BookingRequest struct {
	Date        *string     `bson:"date,omitempty" json:"date,omitempty"`               // "2025-02-25"
	Window      *TimeWindow `bson:"window,omitempty" json:"window,omitempty"`           // acceptable start-time range
	Court       *int        `bson:"court,omitempty" json:"court,omitempty"`             // preferred court, 1..CourtCount
	DurationMin *int        `bson:"durationMin,omitempty" json:"durationMin,omitempty"` // requested length in minutes
}

// IsUnconstrained reports whether no constraint at all was extracted,
// in which case the caller shows full availability.
func (r BookingRequest) IsUnconstrained() bool {
	return r.Date == nil && r.Window == nil && r.Court == nil && r.DurationMin == nil
}
