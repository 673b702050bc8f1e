package models

// WorkflowState is the booking workflow's state machine position. A run moves
// parsing_request → fetching_availability → matching, then lands on one of
// exact_match_found, alternatives_found or no_availability; an authorized run
// continues exact_match_found → executing_reservation → confirmed or
// reservation_failed.
type WorkflowState string

const (
	StateParsingRequest       WorkflowState = "parsing_request"
	StateFetchingAvailability WorkflowState = "fetching_availability"
	StateMatching             WorkflowState = "matching"
	StateExactMatchFound      WorkflowState = "exact_match_found"
	StateAlternativesFound    WorkflowState = "alternatives_found"
	StateNoAvailability       WorkflowState = "no_availability"
	StateExecutingReservation WorkflowState = "executing_reservation"
	StateConfirmed            WorkflowState = "confirmed"
	StateReservationFailed    WorkflowState = "reservation_failed"
)

// Terminal reports whether the workflow ends in this state. Resuming with a
// user-selected alternative is a new run, never a resumed one.
func (s WorkflowState) Terminal() bool {
	switch s {
	case StateExactMatchFound, StateAlternativesFound, StateNoAvailability,
		StateConfirmed, StateReservationFailed:
		return true
	}
	return false
}

// BookingResult is the single outcome of one workflow run. Created once per
// run and never mutated after return.
type BookingResult struct {
	Status       WorkflowState `bson:"status" json:"status"`
	MatchedSlot  *BookingSlot  `bson:"matchedSlot,omitempty" json:"matchedSlot,omitempty"`
	Alternatives []BookingSlot `bson:"alternatives,omitempty" json:"alternatives,omitempty"`
	Message      string        `bson:"message" json:"message"`
}
