// Package cache decorates any core.Storage with an in-process LRU read cache.
// Writes go through to the inner storage before the cache is updated.
package cache

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aretw0/quill/pkg/core"
)

// DefaultSize is the number of keys kept when no size is given.
const DefaultSize = 128

type entry struct {
	value string
	found bool
}

// Storage is a write-through LRU cache over an inner storage.
type Storage struct {
	inner  core.Storage
	lru    *lru.Cache[string, entry]
	hits   atomic.Int64
	misses atomic.Int64
	// watchFailures counts forwarders that died; each one purged the cache.
	watchFailures atomic.Int64
}

// New wraps inner. size <= 0 uses DefaultSize.
func New(inner core.Storage, size int) (*Storage, error) {
	if inner == nil {
		return nil, fmt.Errorf("cache: inner storage is nil")
	}
	if size <= 0 {
		size = DefaultSize
	}
	c, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &Storage{inner: inner, lru: c}, nil
}

// Initialize forwards to the inner storage when it needs setup.
func (s *Storage) Initialize(ctx context.Context) error {
	if in, ok := s.inner.(core.Initializer); ok {
		return in.Initialize(ctx)
	}
	return nil
}

// Get implements core.Storage. Absent keys are cached too.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	if e, ok := s.lru.Get(key); ok {
		s.hits.Add(1)
		return e.value, e.found, nil
	}
	s.misses.Add(1)

	v, found, err := s.inner.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	s.lru.Add(key, entry{value: v, found: found})
	return v, found, nil
}

// Set implements core.Storage.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		// The inner state is unknown now.
		s.lru.Remove(key)
		return err
	}
	s.lru.Add(key, entry{value: value, found: true})
	return nil
}

// Invalidate drops key, or every key when none is given. Call it when the
// inner storage changed behind the cache's back (see core.Watchable).
func (s *Storage) Invalidate(keys ...string) {
	if len(keys) == 0 {
		s.lru.Purge()
		return
	}
	for _, k := range keys {
		s.lru.Remove(k)
	}
}

// Watch forwards to the inner storage and invalidates changed keys before
// passing the events on.
func (s *Storage) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	w, ok := s.inner.(core.Watchable)
	if !ok {
		return nil, fmt.Errorf("storage %T does not support watching", s.inner)
	}
	upstream, err := w.Watch(ctx, pattern)
	if err != nil {
		return nil, err
	}

	out := make(chan core.Event)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)
		for e := range upstream {
			s.Invalidate(e.Key)
			select {
			case out <- e:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		// Later changes go unseen, so nothing cached can be trusted.
		s.watchFailures.Add(1)
		s.lru.Purge()
	}))
	return out, nil
}

// Inner returns the wrapped storage.
func (s *Storage) Inner() core.Storage {
	return s.inner
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Size          int   `json:"size"`
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	WatchFailures int64 `json:"watch_failures"`
	Inner         any   `json:"inner,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	var inner any
	if in, ok := s.inner.(introspection.Introspectable); ok {
		inner = in.State()
	}
	return StorageState{
		Size:          s.lru.Len(),
		Hits:          s.hits.Load(),
		Misses:        s.misses.Load(),
		WatchFailures: s.watchFailures.Load(),
		Inner:         inner,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	if comp, ok := s.inner.(introspection.Component); ok {
		return "cache+" + comp.ComponentType()
	}
	return "cache"
}

var _ core.Storage = (*Storage)(nil)
var _ core.Watchable = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
