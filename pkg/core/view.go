package core

import (
	"context"
	"slices"
	"sync"
)

// View holds the transient presentation state layered over a Store:
// the selected category and the note currently being edited.
// It is never persisted.
type View struct {
	store *Store

	mu       sync.Mutex
	selected string
	editing  int64
	isEdit   bool
}

// NewView creates a View selecting "General" (or the first category when
// "General" does not exist).
func NewView(store *Store) *View {
	v := &View{store: store}
	v.selected = v.fallbackCategory()
	return v
}

func (v *View) fallbackCategory() string {
	categories := v.store.Categories()
	if len(categories) == 0 || slices.Contains(categories, "General") {
		return "General"
	}
	return categories[0]
}

// Selected returns the selected category. If it was deleted meanwhile, the
// selection falls back to the first remaining category.
func (v *View) Selected() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !slices.Contains(v.store.Categories(), v.selected) {
		v.selected = v.fallbackCategory()
	}
	return v.selected
}

// Select changes the selected category. Unknown names are ignored.
func (v *View) Select(category string) bool {
	if !slices.Contains(v.store.Categories(), category) {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = category
	return true
}

// VisibleNotes returns the notes of the selected category, newest first.
func (v *View) VisibleNotes() []Note {
	return v.store.ListNotesByCategory(v.Selected())
}

// AddNote files content under the selected category.
func (v *View) AddNote(ctx context.Context, content string) (Note, bool, error) {
	return v.store.CreateNote(ctx, content, v.Selected())
}

// BeginEdit enters edit mode for note id. Unknown ids are ignored.
func (v *View) BeginEdit(id int64) bool {
	if _, ok := v.store.Note(id); !ok {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editing = id
	v.isEdit = true
	return true
}

// Editing returns the id in edit mode, if any.
func (v *View) Editing() (int64, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.editing, v.isEdit
}

// CancelEdit leaves edit mode without saving.
func (v *View) CancelEdit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.editing = 0
	v.isEdit = false
}

// SaveEdit updates note id and leaves edit mode when it targeted that id.
// Edit mode is kept when the write fails so the user can retry.
func (v *View) SaveEdit(ctx context.Context, id int64, content string) (bool, error) {
	changed, err := v.store.UpdateNote(ctx, id, content)
	if err != nil {
		return false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.isEdit && v.editing == id {
		v.editing = 0
		v.isEdit = false
	}
	return changed, nil
}
