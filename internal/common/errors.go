// Package common defines shared constants and sentinel errors used across
// client and server layers of shiftnotes. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors (missing or empty required field).
	ErrorValidation = errors.New("validation error")

	// Storage errors. ErrorPersistence covers infrastructure failures of a
	// single-record operation; ErrorPartialCascade means the primary record
	// of a cascading delete was removed but one or more descendant batches
	// failed, leaving orphaned records until the delete is retried.
	ErrorPersistence    = errors.New("persistence failure")
	ErrorPartialCascade = errors.New("partial cascade failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
