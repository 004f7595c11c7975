package storage

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when an insert collides with a unique key
	// (token mint address, transaction signature, image uri).
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStaleState is returned by conditional writes when the row no longer
	// holds the expected graduation status.
	ErrStaleState = errors.New("stale state: row changed since it was read")
)
