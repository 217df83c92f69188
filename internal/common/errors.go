// Package common defines sentinel errors shared by the storage, service and
// HTTP layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// ErrValidation marks missing or malformed input.
	ErrValidation = errors.New("invalid request")

	// ErrUnauthorized marks bad credentials.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrConflict marks a uniqueness violation, e.g. an email already registered.
	ErrConflict = errors.New("conflict")

	// ErrTooManyAttempts is returned while a client is locked out of login.
	ErrTooManyAttempts = errors.New("too many login attempts")

	// ErrStorage wraps unexpected persistence failures.
	ErrStorage = errors.New("storage error")

	// ErrNotFound is returned by lookups that match no row.
	ErrNotFound = errors.New("not found")
)
