package providers

import (
	"errors"
	"fmt"
)

// StatusError reports a non-200 answer from the generation service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation service returned status %d: %s", e.StatusCode, e.Body)
}

// IsStatusError checks if an error is, or wraps, a StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// ErrMissingResponse is returned when a 200 answer carries no response text field.
var ErrMissingResponse = errors.New("response field missing from generation output")
