package core

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Notes       int    `json:"notes"`
	Categories  int    `json:"categories"`
	LastID      int64  `json:"last_id"`
	StorageType string `json:"storage_type"`
	Storage     any    `json:"storage,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storageType := "storage"
	if comp, ok := s.storage.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	var inner any
	if in, ok := s.storage.(introspection.Introspectable); ok {
		inner = in.State()
	}

	return StoreState{
		Notes:       len(s.notes),
		Categories:  len(s.categories),
		LastID:      s.lastID,
		StorageType: storageType,
		Storage:     inner,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
