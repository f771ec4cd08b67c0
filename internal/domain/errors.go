package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoggedIn guards operations that need a session token; it is
	// raised locally, before any transport call.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrSelectionRequired marks scenarios whose exit time needs an
	// explicit user choice of days and/or minutes.
	ErrSelectionRequired = errors.New("exit time selection required")

	// ErrSecretNotFound is returned by the credential store when no
	// value exists under the requested key.
	ErrSecretNotFound = errors.New("secret not found")
)

// ConnectionError covers socket open failures, read timeouts, empty
// responses and unparsable payloads. The client never retries these.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("gate connection: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError means the response METHOD matched neither the request
// method nor the generic error marker. Surfaced immediately, no retry.
type ProtocolError struct {
	Want string
	Got  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("gate protocol: response method %q does not match request method %q", e.Got, e.Want)
}

// StatusError wraps a non-zero backend status with its mapped kind and
// human-readable message.
type StatusError struct {
	Code int
	Kind StatusKind
}

func (e *StatusError) Error() string {
	return StatusMessage(e.Code)
}

// NewStatusError builds a StatusError for a backend status code.
func NewStatusError(code int) *StatusError {
	return &StatusError{Code: code, Kind: ClassifyStatus(code)}
}
