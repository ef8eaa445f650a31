package domain

import "errors"

// Domain errors
var (
	ErrInvalidGrouping      = errors.New("invalid grouping arguments")
	ErrGroupIndexOutOfRange = errors.New("group index out of range")
	ErrMalformedResponse    = errors.New("malformed model response")
	ErrRetriesExhausted     = errors.New("retries exhausted")
	ErrNoValidInput         = errors.New("no valid input document")
	ErrEmptyDocument        = errors.New("document has no pages")
)

// ValidationError represents a request validation error with field and
// message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
