package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Store is the single source of truth for notes and categories.
// Every mutation passes through it and is written to the Storage in full
// before the in-memory state changes. A failed write leaves both the store
// and the storage as they were.
//
// Invalid input (blank content, blank or duplicate category, unknown id)
// is a silent no-op reported only through the changed result.
type Store struct {
	mu         sync.RWMutex
	storage    Storage
	opts       *options
	notes      []Note
	categories []string
	lastID     int64
}

// Open creates a Store backed by storage and performs the initial load.
func Open(ctx context.Context, storage Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, errors.New("storage cannot be nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &Store{storage: storage, opts: o}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload discards the in-memory state and reads it again from storage.
func (s *Store) Reload(ctx context.Context) error {
	notes, categories, err := LoadSnapshot(ctx, s.storage)
	if err != nil {
		return err
	}

	for _, r := range []struct {
		key    string
		source Source
		err    error
	}{
		{NotesKey, notes.Source, notes.Err},
		{CategoriesKey, categories.Source, categories.Err},
	} {
		if r.source != SourceCorrupt {
			continue
		}
		if !s.opts.recoverCorrupt {
			return r.err
		}
		if s.opts.logger != nil {
			s.opts.logger.Warn("corrupt state replaced by defaults", "key", r.key, "error", r.err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.notes = notes.Value
	s.categories = categories.Value
	for _, n := range s.notes {
		if n.ID > s.lastID {
			s.lastID = n.ID
		}
	}

	if s.opts.logger != nil {
		s.opts.logger.Debug("state loaded",
			"notes", len(s.notes),
			"notes_source", notes.Source.String(),
			"categories", len(s.categories),
			"categories_source", categories.Source.String(),
		)
	}
	return nil
}

// CreateNote files a new note under category and puts it at the front.
// It is a no-op when content is blank or category is not a known category.
func (s *Store) CreateNote(ctx context.Context, content, category string) (Note, bool, error) {
	if strings.TrimSpace(content) == "" {
		return Note{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !containsCategory(s.categories, category) {
		return Note{}, false, nil
	}

	now := s.opts.clock()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	stamp := now.Format(s.opts.timeLayout)

	note := Note{
		ID:        id,
		Content:   content,
		Category:  category,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}

	notes := make([]Note, 0, len(s.notes)+1)
	notes = append(notes, note)
	notes = append(notes, s.notes...)

	if err := s.commit(ctx, notes, s.categories); err != nil {
		return Note{}, false, err
	}
	s.lastID = id
	return note, true, nil
}

// UpdateNote replaces the content of note id and refreshes UpdatedAt.
// Unknown ids are a no-op.
func (s *Store) UpdateNote(ctx context.Context, id int64, content string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfNote(s.notes, id)
	if i < 0 {
		return false, nil
	}

	notes := slices.Clone(s.notes)
	notes[i].Content = content
	notes[i].UpdatedAt = s.opts.clock().Format(s.opts.timeLayout)

	if err := s.commit(ctx, notes, s.categories); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteNote removes note id. Unknown ids are a no-op.
func (s *Store) DeleteNote(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOfNote(s.notes, id)
	if i < 0 {
		return false, nil
	}

	notes := slices.Delete(slices.Clone(s.notes), i, i+1)
	if err := s.commit(ctx, notes, s.categories); err != nil {
		return false, err
	}
	return true, nil
}

// CreateCategory appends name to the category set.
// Blank names and exact (case-sensitive) duplicates are a no-op.
func (s *Store) CreateCategory(ctx context.Context, name string) (bool, error) {
	if strings.TrimSpace(name) == "" {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if containsCategory(s.categories, name) {
		return false, nil
	}

	categories := append(slices.Clone(s.categories), name)
	if err := s.commit(ctx, s.notes, categories); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteCategory removes name from the category set. Notes filed under it
// are left untouched. Unknown names are a no-op.
func (s *Store) DeleteCategory(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.categories, name)
	if i < 0 {
		return false, nil
	}

	categories := slices.Delete(slices.Clone(s.categories), i, i+1)
	if err := s.commit(ctx, s.notes, categories); err != nil {
		return false, err
	}
	return true, nil
}

// ListNotesByCategory returns the notes filed under exactly category,
// newest first.
func (s *Store) ListNotesByCategory(category string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterByCategory(s.notes, func(c string) bool { return c == category })
}

// ListNotesMatching returns the notes whose category matches the glob
// pattern (e.g. "Work*" or "{Work,Study}"), newest first.
func (s *Store) ListNotesMatching(pattern string) ([]Note, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid category pattern: %q", pattern)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return filterByCategory(s.notes, func(c string) bool {
		ok, _ := doublestar.Match(pattern, c)
		return ok
	}), nil
}

// Note returns the note with the given id.
func (s *Store) Note(id int64) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := indexOfNote(s.notes, id)
	if i < 0 {
		return Note{}, false
	}
	return s.notes[i], true
}

// Notes returns a copy of all notes, newest first.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.notes)
}

// Categories returns a copy of the category names in insertion order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.categories)
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Notes:      slices.Clone(s.notes),
		Categories: slices.Clone(s.categories),
	}
}

// commit persists the candidate state and, on success, installs it.
// Must be called with s.mu held.
func (s *Store) commit(ctx context.Context, notes []Note, categories []string) error {
	prev := Snapshot{Notes: s.notes, Categories: s.categories}
	if err := s.persist(ctx, prev, Snapshot{Notes: notes, Categories: categories}); err != nil {
		return err
	}
	s.notes = notes
	s.categories = categories
	return nil
}

// persist writes both keys, retrying transient failures. A failed attempt
// never leaves storage holding part of next.
func (s *Store) persist(ctx context.Context, prev, next Snapshot) error {
	before, err := prev.entries()
	if err != nil {
		return err
	}
	after, err := next.entries()
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < s.opts.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrPersist, ctx.Err())
			case <-time.After(s.opts.backoff * time.Duration(attempt)):
			}
		}

		lastErr = s.write(ctx, before, after)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, ErrReadOnly) || ctx.Err() != nil {
			break
		}
		if s.opts.logger != nil {
			s.opts.logger.Warn("write failed", "attempt", attempt+1, "error", lastErr)
		}
	}
	return fmt.Errorf("%w: %w", ErrPersist, lastErr)
}

// write sets every key of after in order. When a key fails, the keys
// already written are restored from before.
func (s *Store) write(ctx context.Context, before, after []entry) error {
	for i, e := range after {
		err := s.storage.Set(ctx, e.key, e.value)
		if err == nil {
			continue
		}
		if rbErr := s.rollback(ctx, before[:i]); rbErr != nil {
			return fmt.Errorf("%w (rollback: %w)", err, rbErr)
		}
		return err
	}
	return nil
}

// rollback restores entries even when ctx was canceled mid-write.
func (s *Store) rollback(ctx context.Context, entries []entry) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error
	for _, e := range entries {
		if err := s.storage.Set(ctx, e.key, e.value); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.key, err))
		}
	}
	if len(errs) > 0 && s.opts.logger != nil {
		s.opts.logger.Error("rollback failed, storage may hold a partial write", "error", errors.Join(errs...))
	}
	return errors.Join(errs...)
}
