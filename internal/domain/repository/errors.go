package repository

import "errors"

var (
	// ErrNotFound is returned when an id or email resolves to no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned by conditional writes when the row exists but
	// its current state does not match the expected one (a lost race or a
	// stale client view).
	ErrConflict = errors.New("state conflict")

	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("duplicate")
)
