package core

import "context"

// Storage defines the contract of the persistence adapter.
// It is a plain key-value surface: the Store owns the encoding of its values.
// Adhering to this interface keeps the core independent of the underlying
// medium (memory, files, Redis, SQLite).
type Storage interface {
	// Get returns the value stored under key. found is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Initializer is implemented by adapters that need setup before first use
// (mkdir, git init, schema creation).
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Watchable is implemented by adapters that can report changes made to
// their keys by someone else (another process, an editor, a git checkout).
type Watchable interface {
	Watch(ctx context.Context, pattern string) (<-chan Event, error)
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason (commit
// message for versioned adapters) along with a write.
const ChangeReasonKey contextKey = "change_reason"

// WithChangeReason returns a context carrying reason.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, ChangeReasonKey, reason)
}
