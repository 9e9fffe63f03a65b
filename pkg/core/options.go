package core

import (
	"log/slog"
	"time"
)

// options holds the configuration of a Store.
type options struct {
	logger         *slog.Logger
	clock          func() time.Time
	timeLayout     string
	recoverCorrupt bool
	attempts       int
	backoff        time.Duration
}

// Option configures a Store.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		clock:      time.Now,
		timeLayout: DefaultTimeLayout,
		attempts:   3,
		backoff:    50 * time.Millisecond,
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock replaces time.Now. Useful for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithTimeLayout sets the layout used to render CreatedAt and UpdatedAt.
func WithTimeLayout(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.timeLayout = layout
		}
	}
}

// WithRecoverCorrupt makes Open fall back to defaults when a persisted key
// cannot be decoded, instead of failing with ErrCorruptState.
func WithRecoverCorrupt(enabled bool) Option {
	return func(o *options) {
		o.recoverCorrupt = enabled
	}
}

// WithRetry sets how many times a failed write is attempted and the base
// delay between attempts (the delay grows linearly).
// attempts < 1 is treated as 1.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		if attempts < 1 {
			attempts = 1
		}
		if backoff < 0 {
			backoff = 0
		}
		o.attempts = attempts
		o.backoff = backoff
	}
}
