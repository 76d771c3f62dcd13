// Package errs contains the sentinel errors shared by the client core so
// callers can classify failures with errors.Is.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized indicates the credential is missing or was rejected by the server.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrClient indicates the server rejected the request (4xx other than 401).
	ErrClient = errors.New("client error")

	// ErrServer indicates the server failed to handle the request (5xx).
	ErrServer = errors.New("server error")

	// ErrNetwork indicates no response was received.
	ErrNetwork = errors.New("network failure")

	// ErrValidation indicates bad local input, caught before any network call.
	ErrValidation = errors.New("validation error")

	// ErrBusy indicates a question was submitted while another one is pending.
	ErrBusy = errors.New("busy")

	// ErrNotBound indicates an operation needs a bound resource and none is active.
	ErrNotBound = errors.New("no resource bound")

	// ErrStale indicates a response arrived after its session or resource changed.
	ErrStale = errors.New("stale response")

	// ErrMalformedResponse indicates a 2xx response that did not match the expected shape.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNotFound indicates a key is absent from a store.
	ErrNotFound = errors.New("not found")
)

// Validation returns an ErrValidation carrying a user-facing message.
func Validation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
