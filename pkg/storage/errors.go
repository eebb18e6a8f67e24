package storage

import "errors"

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a user does not exist.
	ErrNotFound = errors.New("user not found")

	// ErrConflict is returned when a user with the given ID already exists.
	ErrConflict = errors.New("user already exists")

	// ErrInvalidFilter is returned when a search filter names an unknown field.
	ErrInvalidFilter = errors.New("unknown filter field")
)
