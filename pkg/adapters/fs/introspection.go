package fs

import (
	"time"

	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path          string     `json:"path"`
	Extension     string     `json:"extension"`
	Gitless       bool       `json:"gitless"`
	ReadOnly      bool       `json:"read_only"`
	Writes        int        `json:"writes"`
	Commits       int        `json:"commits"`
	WatcherActive bool       `json:"watcher_active"`
	LastWrite     *time.Time `json:"last_write,omitempty"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RepositoryState{
		Path:          r.Path,
		Extension:     r.config.Extension,
		Gitless:       r.config.Gitless,
		ReadOnly:      r.config.ReadOnly,
		Writes:        r.writes,
		Commits:       r.commits,
		WatcherActive: r.watcherActive,
		LastWrite:     r.lastWrite,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

func (r *Repository) recordWrite() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.lastWrite = &now
	r.writes++
}

func (r *Repository) recordCommit() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits++
}
