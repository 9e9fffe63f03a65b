// Package memory provides an in-process core.Storage, the Go counterpart of
// a browser's localStorage. It is the default adapter for tests.
package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/aretw0/introspection"

	"github.com/aretw0/quill/pkg/core"
)

// Storage is a map guarded by a mutex.
type Storage struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

// New creates an empty storage.
func New() *Storage {
	return &Storage{values: make(map[string]string)}
}

// NewWithValues creates a storage seeded with values (copied).
func NewWithValues(values map[string]string) *Storage {
	s := New()
	maps.Copy(s.values, values)
	return s
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements core.Storage.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Clear removes every key, like clearing site data in a browser.
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.values)
}

// Writes returns how many Set calls succeeded.
func (s *Storage) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Keys   int `json:"keys"`
	Writes int `json:"writes"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StorageState{Keys: len(s.values), Writes: s.writes}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "memory"
}

var _ core.Storage = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
