package extraction

import (
	"errors"
	"fmt"
)

// Error codes for the extraction taxonomy.
const (
	CodeExtractionFailure = "extractionFailure"
	CodeParseFailure      = "parseFailure"
	CodeLayoutMismatch    = "layoutMismatch"
)

// GridError classifies a failure while turning page elements into slots.
type GridError struct {
	Code    string
	Message string
}

func (e *GridError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewExtractionError(msg string) error {
	return &GridError{Code: CodeExtractionFailure, Message: msg}
}

func NewParseError(msg string) error {
	return &GridError{Code: CodeParseFailure, Message: msg}
}

func NewLayoutMismatchError(got, want int) error {
	return &GridError{
		Code:    CodeLayoutMismatch,
		Message: fmt.Sprintf("inferred %d court columns, expected %d", got, want),
	}
}

// IsLayoutMismatch reports whether err is a layout-mismatch grid error.
func IsLayoutMismatch(err error) bool {
	var ge *GridError
	return errors.As(err, &ge) && ge.Code == CodeLayoutMismatch
}
