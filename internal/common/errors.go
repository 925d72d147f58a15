// Package common defines shared constants and sentinel errors used across
// the hunt server and its CLI client. Callers should use errors.Is to
// match these values; services wrap them with a user-facing detail.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Lifecycle errors: the session or roster row no longer accepts changes.
	ErrorInactive = errors.New("inactive")

	// Validation errors.
	ErrorValidation          = errors.New("validation error")
	ErrorEmptyName           = errors.New("name is required")
	ErrorTooShort            = errors.New("value too short")
	ErrorGuestNameRequired   = errors.New("guest name required")
	ErrorInvalidCoordinates  = errors.New("invalid coordinates")
	ErrorInvalidTarget       = errors.New("invalid target")
	ErrorInvalidCredentials  = errors.New("invalid credentials")
	ErrorCodeExhausted       = errors.New("could not allocate session code")
	ErrorStorageNotAvailable = errors.New("object storage not configured")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
