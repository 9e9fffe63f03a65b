package core

import "errors"

// Common errors.
var (
	// ErrCorruptState is returned when a persisted key exists but cannot be decoded.
	ErrCorruptState = errors.New("persisted state is corrupt")
	// ErrPersist wraps failures of the storage adapter while writing state.
	ErrPersist = errors.New("failed to persist state")
	// ErrReadOnly is returned by adapters opened in read-only mode.
	ErrReadOnly = errors.New("storage is in read-only mode")
)
