package core

import (
	"context"
	"encoding/json"
	"fmt"
)

// Source tells where a loaded value came from.
type Source int

const (
	// SourceStorage means the key was present and decoded successfully.
	SourceStorage Source = iota
	// SourceDefault means the key was absent and the default was used.
	SourceDefault
	// SourceCorrupt means the key was present but could not be decoded.
	// Value holds the default in that case.
	SourceCorrupt
)

func (s Source) String() string {
	switch s {
	case SourceStorage:
		return "storage"
	case SourceDefault:
		return "default"
	case SourceCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// LoadResult is the typed outcome of LoadOrDefault.
type LoadResult[T any] struct {
	Value  T
	Source Source
	// Err is set when Source is SourceCorrupt.
	Err error
}

// LoadOrDefault reads key from s and decodes it as JSON into T.
// An absent key yields def(). A present but undecodable value yields def()
// with SourceCorrupt, so the caller decides whether that is fatal.
// Only adapter failures are returned as an error.
func LoadOrDefault[T any](ctx context.Context, s Storage, key string, def func() T) (LoadResult[T], error) {
	raw, found, err := s.Get(ctx, key)
	if err != nil {
		return LoadResult[T]{}, fmt.Errorf("failed to read %q: %w", key, err)
	}
	if !found {
		return LoadResult[T]{Value: def(), Source: SourceDefault}, nil
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return LoadResult[T]{
			Value:  def(),
			Source: SourceCorrupt,
			Err:    fmt.Errorf("%w: key %q: %v", ErrCorruptState, key, err),
		}, nil
	}
	return LoadResult[T]{Value: v, Source: SourceStorage}, nil
}

// Snapshot is the full persisted state of a Store.
type Snapshot struct {
	Notes      []Note
	Categories []string
}

// Encode renders the snapshot as the two stored values.
func (s Snapshot) Encode() (notes, categories string, err error) {
	n := s.Notes
	if n == nil {
		n = []Note{}
	}
	c := s.Categories
	if c == nil {
		c = []string{}
	}

	nb, err := json.Marshal(n)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode notes: %w", err)
	}
	cb, err := json.Marshal(c)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode categories: %w", err)
	}
	return string(nb), string(cb), nil
}

// entry is one stored key and its encoded value.
type entry struct {
	key   string
	value string
}

// entries returns the stored keys in write order.
func (s Snapshot) entries() ([]entry, error) {
	notes, categories, err := s.Encode()
	if err != nil {
		return nil, err
	}
	return []entry{{NotesKey, notes}, {CategoriesKey, categories}}, nil
}

// LoadSnapshot performs the initial load of both collections.
// Corrupt keys are reported through the returned results, never hidden.
func LoadSnapshot(ctx context.Context, s Storage) (LoadResult[[]Note], LoadResult[[]string], error) {
	notes, err := LoadOrDefault(ctx, s, NotesKey, func() []Note { return []Note{} })
	if err != nil {
		return notes, LoadResult[[]string]{}, err
	}
	if notes.Source == SourceStorage && notes.Value == nil {
		// "null" decodes to a nil slice.
		notes.Value = []Note{}
	}

	categories, err := LoadOrDefault(ctx, s, CategoriesKey, DefaultCategories)
	if err != nil {
		return notes, categories, err
	}
	if categories.Source == SourceStorage && categories.Value == nil {
		categories.Value = []string{}
	}
	return notes, categories, nil
}
