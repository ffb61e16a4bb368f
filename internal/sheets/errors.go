package sheets

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout is returned when the store call exceeds its deadline.
	ErrTimeout = errors.New("sheets: request timed out")

	// ErrMalformedResponse is returned when the webhook body is not valid JSON.
	ErrMalformedResponse = errors.New("sheets: response was not valid JSON")

	// ErrRemoteRejected is returned when the webhook answered without the
	// success status token.
	ErrRemoteRejected = errors.New("sheets: remote reported failure")
)

// StatusError is returned when the webhook responds with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sheets: responded %d: %s", e.Code, e.Body)
}
