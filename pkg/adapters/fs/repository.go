// Package fs implements core.Storage on the local filesystem.
//
// Each key is stored as a JSON file (`notes.json`, `noteCategories.json`)
// directly under the vault directory. Writes are atomic (temp file + rename)
// and, unless the vault is gitless, every changed file is committed.
package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/quill/pkg/core"
	"github.com/aretw0/quill/pkg/git"
)

// DefaultExtension is appended to keys to form file names.
const DefaultExtension = ".json"

// Repository implements core.Storage using the filesystem and, optionally, Git.
type Repository struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	writes        int
	commits       int
	watcherActive bool
	lastWrite     *time.Time
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path      string
	AutoInit  bool // create the directory (and git repo) when missing
	Gitless   bool // disable versioning
	MustExist bool
	ReadOnly  bool
	Extension string // defaults to ".json"
	LockName  string // git lock file, defaults to git.DefaultLockName
	Logger    *slog.Logger
	// ErrorHandler receives runtime watcher failures that are otherwise only logged.
	ErrorHandler func(error)
}

// NewRepository creates a new filesystem-backed repository.
// It does no I/O until Initialize or the first Get/Set.
func NewRepository(config Config) *Repository {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}
	if !strings.HasPrefix(config.Extension, ".") {
		config.Extension = "." + config.Extension
	}
	return &Repository{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.LockName, config.Logger),
		config: config,
	}
}

// Initialize performs the necessary setup for the repository (mkdir, git init).
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	if !r.config.ReadOnly {
		removed, err := removeStaleTemps(r.Path)
		if err != nil {
			return fmt.Errorf("failed to clean staged writes: %w", err)
		}
		if removed > 0 && r.config.Logger != nil {
			r.config.Logger.Warn("removed staged writes of an interrupted session", "path", r.Path, "count", removed)
		}
	}

	if r.config.Gitless || r.config.ReadOnly {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}

	wasNewRepo := false
	if _, err := os.Stat(filepath.Join(r.Path, ".git")); os.IsNotExist(err) {
		if !r.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", r.Path)
		}
		if err := r.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
		wasNewRepo = true
	}

	mod, err := r.ensureIgnore()
	if err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	if mod && wasNewRepo {
		// Start the history clean with the ignore rule in place.
		if err := r.git.Add(ctx, ".gitignore"); err != nil {
			return fmt.Errorf("failed to add .gitignore: %w", err)
		}
		if err := r.git.Commit(ctx, "chore: configure quill ignore"); err != nil {
			return fmt.Errorf("failed to commit .gitignore: %w", err)
		}
	}

	return nil
}

// ensureIgnore makes sure the lock and temp files never reach git.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	entries := []string{r.git.LockName(), TempFilePrefix + "*"}

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(string(content), "\n") {
		present[strings.TrimSpace(line)] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return false, nil
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}
	for _, e := range missing {
		if _, err := f.WriteString(e + "\n"); err != nil {
			return false, err
		}
	}

	return true, nil
}

// filename maps a key to its file name, rejecting keys that would escape
// the vault or collide with hidden files.
func (r *Repository) filename(key string) (string, error) {
	if key == "" {
		return "", errors.New("key cannot be empty")
	}
	if strings.ContainsAny(key, `/\`) || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("invalid key: %q", key)
	}
	return key + r.config.Extension, nil
}

// Get implements core.Storage.
func (r *Repository) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	name, err := r.filename(key)
	if err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(filepath.Join(r.Path, name))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), true, nil
}

// Set persists value atomically and commits it to Git.
//
// Workflow:
//  1. Validate key and mode.
//  2. Stage the value in a temp file and rename it over the key file.
//  3. (If Git enabled) lock, skip when the file is unchanged, 'git add' and
//     'git commit' with the change reason from the context.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := r.filename(key)
	if err != nil {
		return err
	}

	if err := writeKey(r.Path, key, name, []byte(value), 0644); err != nil {
		return err
	}
	r.recordWrite()

	if r.config.Gitless {
		return nil
	}

	unlock, err := r.git.Lock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	status, err := r.git.Status(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to git status: %w", err)
	}
	if status == "" {
		return nil
	}

	if err := r.git.Add(ctx, name); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}

	msg := "update " + key
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}

	if err := r.git.Commit(ctx, msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}
	r.recordCommit()
	return nil
}

// Keys lists the keys currently stored in the vault.
func (r *Repository) Keys(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.Path)
	if err != nil {
		return nil, err
	}

	var keys []string
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() {
			continue
		}
		if key, ok := r.keyOf(e.Name()); ok {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// keyOf maps a file name back to its key.
func (r *Repository) keyOf(name string) (string, bool) {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, TempFilePrefix) {
		return "", false
	}
	if filepath.Ext(base) != r.config.Extension {
		return "", false
	}
	return strings.TrimSuffix(base, r.config.Extension), true
}

var _ core.Storage = (*Repository)(nil)
var _ core.Initializer = (*Repository)(nil)
var _ core.Watchable = (*Repository)(nil)
