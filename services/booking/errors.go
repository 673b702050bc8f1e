package booking

import (
	"errors"
	"fmt"
)

// Workflow error codes. Extraction and parse errors carry their own codes in
// the extraction package; these cover the booking side.
const (
	codeReservationFailure = "reservationFailure"
	codeRunNotFound        = "runNotFound"
	codeBadRequest         = "badRequest"
)

type WorkflowError struct {
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewReservationFailure marks a reservation attempt the portal rejected or
// never confirmed. The workflow reports it and stops; it never retries.
func NewReservationFailure(msg string) error {
	return &WorkflowError{
		Code:    codeReservationFailure,
		Message: msg,
	}
}

func NewRunNotFound(runID string) error {
	return &WorkflowError{
		Code:    codeRunNotFound,
		Message: fmt.Sprintf("booking run %s not found or expired", runID),
	}
}

func NewBadRequest(msg string) error {
	return &WorkflowError{
		Code:    codeBadRequest,
		Message: msg,
	}
}

func IsRunNotFound(err error) bool {
	var w *WorkflowError
	return errors.As(err, &w) && w.Code == codeRunNotFound
}

func IsBadRequest(err error) bool {
	var w *WorkflowError
	return errors.As(err, &w) && w.Code == codeBadRequest
}
