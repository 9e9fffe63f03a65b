package quill

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/quill/internal/platform"
	"github.com/aretw0/quill/pkg/core"
)

// --- Types ---

// Note is a public alias for the core note.
type Note = core.Note

// Store is a public alias for the core note store.
type Store = core.Store

// Storage is the persistence port adapters implement.
type Storage = core.Storage

// Config is the quill.yaml vault configuration.
type Config = platform.Config

// --- Configuration ---

// Option defines a functional option for configuring quill.
type Option = platform.Option

// WithAdapter selects the storage adapter by name ("fs", "memory", "redis", "sqlite").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithStorage allows injecting a custom storage adapter.
func WithStorage(s Storage) Option {
	return platform.WithStorage(s)
}

// WithAutoInit enables automatic initialization of the vault (creates directory and git init).
func WithAutoInit(auto bool) Option {
	return platform.WithAutoInit(auto)
}

// WithVersioning enables or disables version control (e.g. Git).
func WithVersioning(enabled bool) Option {
	return platform.WithVersioning(enabled)
}

// WithForceTemp forces the use of a temporary directory (useful for testing).
func WithForceTemp(force bool) Option {
	return platform.WithForceTemp(force)
}

// WithMustExist ensures the vault directory must already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithReadOnly opens the vault without write access.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithCacheSize wraps the adapter in an LRU cache.
func WithCacheSize(n int) Option {
	return platform.WithCacheSize(n)
}

// WithRedisPrefix sets the redis key namespace.
func WithRedisPrefix(prefix string) Option {
	return platform.WithRedisPrefix(prefix)
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithWatcherErrorHandler receives runtime watcher failures.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// WithClock replaces the wall clock used for IDs and timestamps.
func WithClock(clock func() time.Time) Option {
	return platform.WithClock(clock)
}

// WithTimeLayout sets the layout of note timestamps.
func WithTimeLayout(layout string) Option {
	return platform.WithTimeLayout(layout)
}

// WithRecoverCorrupt starts from defaults instead of failing on corrupt state.
func WithRecoverCorrupt(enabled bool) Option {
	return platform.WithRecoverCorrupt(enabled)
}

// WithRetry configures write retries.
func WithRetry(attempts int, backoff time.Duration) Option {
	return platform.WithRetry(attempts, backoff)
}

// --- Factory ---

// New opens a note store on the storage described by the options.
func New(ctx context.Context, uri string, opts ...Option) (*Store, error) {
	return platform.New(ctx, uri, opts...)
}

// Init initializes a storage adapter explicitly.
func Init(ctx context.Context, uri string, opts ...Option) (Storage, error) {
	return platform.Init(ctx, uri, opts...)
}

// --- Safety & Utils ---

// ResolveVaultPath determines the actual path for the vault based on safety rules.
func ResolveVaultPath(userPath string, forceTemp bool) string {
	return platform.ResolveVaultPath(userPath, forceTemp)
}

// IsDevRun checks if the current process is running via `go run` or `go test`.
func IsDevRun() bool {
	return platform.IsDevRun()
}

// FindVaultRoot recursively looks upwards for a vault root indicator.
func FindVaultRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// LoadConfig reads quill.yaml, .env and QUILL_* variables for a vault.
func LoadConfig(dir string) (Config, error) {
	return platform.LoadConfig(dir)
}

// WithChangeReason attaches a commit message to a write.
func WithChangeReason(ctx context.Context, reason string) context.Context {
	return core.WithChangeReason(ctx, reason)
}

// --- Semantic Commits ---

const (
	CommitTypeFeat     = platform.CommitTypeFeat
	CommitTypeFix      = platform.CommitTypeFix
	CommitTypeDocs     = platform.CommitTypeDocs
	CommitTypeStyle    = platform.CommitTypeStyle
	CommitTypeRefactor = platform.CommitTypeRefactor
	CommitTypePerf     = platform.CommitTypePerf
	CommitTypeTest     = platform.CommitTypeTest
	CommitTypeChore    = platform.CommitTypeChore
)

// FormatChangeReason builds a Conventional Commit message.
func FormatChangeReason(ctype, scope, subject, body string) string {
	return platform.FormatChangeReason(ctype, scope, subject, body)
}

// AppendFooter appends the quill footer to an arbitrary message.
func AppendFooter(msg string) string {
	return platform.AppendFooter(msg)
}
