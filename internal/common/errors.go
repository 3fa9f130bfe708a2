// Package common defines shared constants and sentinel errors used across
// client and server layers of stampcard. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Storage medium errors. Every backend maps its own failures onto these.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageConflict    = errors.New("storage conflict: close other instances and reload")
	ErrStorageIO          = errors.New("storage i/o failure")

	// ErrNetwork is a transient failure talking to the remote record service.
	// It is kept apart from "not found" so callers can offer a retry.
	ErrNetwork = errors.New("network error")

	// Validation errors.
	ErrValidation     = errors.New("validation error")
	ErrUserExists     = errors.New("user already exists")
	ErrInvalidSession = errors.New("invalid session: user and admin are mutually exclusive")
)
