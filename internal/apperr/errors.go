// Package apperr defines the sentinel errors shared across the service.
//
// Handlers map these onto HTTP status codes with errors.Is; anything else
// surfaces as an internal error.
package apperr

import "errors"

var (
	// ErrNotFound means the lookup key matched no record.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a required parameter was missing or invalid.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate means a create collided with an existing business key.
	ErrDuplicate = errors.New("already exists")
	// ErrUnavailable means the backing storage could not be read or written.
	// When it wraps a save failure the in-memory mutation has already been
	// applied; memory and disk diverge until the next successful save.
	ErrUnavailable = errors.New("storage unavailable")
)
