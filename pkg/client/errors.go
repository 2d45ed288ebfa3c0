package client

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkErrorMessage is shown when the service could not be reached at all.
const NetworkErrorMessage = "Could not reach the advisory service"

// Error is the uniform failure value returned by every Client call.
// Status is 0 when no HTTP response was received.
type Error struct {
	Status  int
	Message string

	cause error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

// Unwrap returns the underlying transport or decode error, if any.
func (e *Error) Unwrap() error {
	return e.cause
}

// HasStatus reports whether the error came with an HTTP response.
func (e *Error) HasStatus() bool {
	return e.Status != 0
}

// AsError extracts the *Error from err. Any other non-nil error is wrapped
// as a network failure so callers always get a message to display.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &Error{Message: NetworkErrorMessage}
}

// IsStatus returns true if err (or any wrapped error) is an Error with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == code
	}
	return false
}

// IsAuthFailure reports whether err means the session token was missing,
// invalid or expired. 422 is what the backend's JWT layer answers for a
// malformed token.
func IsAuthFailure(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusUnprocessableEntity)
}
