package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/quill/pkg/core"
)

// options holds the internal configuration for quill.
type options struct {
	storage   core.Storage
	logger    *slog.Logger
	adapter   string
	config    map[string]interface{}
	storeOpts []core.Option
}

// Option defines a functional option for configuring quill.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: "fs",
		config:  make(map[string]interface{}),
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithStorage injects a custom storage adapter (e.g. a fake in tests).
// If provided, the adapter named by WithAdapter is skipped.
func WithStorage(s core.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default),
// "memory", "redis" or "sqlite".
func WithAdapter(name string) Option {
	return func(o *options) {
		if name != "" {
			o.adapter = name
		}
	}
}

// WithLogger sets the logger for the store and the adapters.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAutoInit creates the vault (directory, marker, git repo) when missing.
func WithAutoInit(auto bool) Option {
	return func(o *options) {
		o.config["auto_init"] = auto
	}
}

// WithVersioning enables or disables git commits of every write (fs only).
// By default, versioning is disabled.
func WithVersioning(enabled bool) Option {
	return func(o *options) {
		o.config["versioning"] = enabled
	}
}

// WithForceTemp re-roots fs vaults into a temporary directory.
// Dev runs (`go run`, `go test`) do this regardless.
func WithForceTemp(force bool) Option {
	return func(o *options) {
		o.config["force_temp"] = force
	}
}

// WithMustExist ensures the vault directory must already exist (fs only).
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.config["must_exist"] = must
	}
}

// WithReadOnly makes every write fail with core.ErrReadOnly and skips
// initialization side effects.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithCacheSize wraps the adapter in an LRU read cache of n keys.
// Zero (the default) disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.config["cache_size"] = n
	}
}

// WithRedisPrefix sets the key namespace of the redis adapter.
func WithRedisPrefix(prefix string) Option {
	return func(o *options) {
		o.config["redis_prefix"] = prefix
	}
}

// WithWatcherErrorHandler receives runtime watcher failures (fs only).
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.config["watcher_error_handler"] = fn
	}
}

// WithClock replaces time.Now in the store.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, core.WithClock(clock))
	}
}

// WithTimeLayout sets the layout of note timestamps.
func WithTimeLayout(layout string) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, core.WithTimeLayout(layout))
	}
}

// WithRecoverCorrupt falls back to defaults when persisted state is corrupt.
func WithRecoverCorrupt(enabled bool) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, core.WithRecoverCorrupt(enabled))
	}
}

// WithRetry configures how failed writes are retried.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		o.storeOpts = append(o.storeOpts, core.WithRetry(attempts, backoff))
	}
}
