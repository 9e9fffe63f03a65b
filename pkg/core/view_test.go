package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/core"
)

func TestView(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)
	view := core.NewView(store)

	assert.Equal(t, "General", view.Selected())

	t.Run("Adds to Selected Category", func(t *testing.T) {
		require.True(t, view.Select("Work"))
		note, changed, err := view.AddNote(ctx, "standup")
		require.NoError(t, err)
		require.True(t, changed)
		assert.Equal(t, "Work", note.Category)

		visible := view.VisibleNotes()
		require.Len(t, visible, 1)
		assert.Equal(t, note.ID, visible[0].ID)

		assert.False(t, view.Select("Missing"))
		assert.Equal(t, "Work", view.Selected())
	})

	t.Run("Edit Mode", func(t *testing.T) {
		note := view.VisibleNotes()[0]
		require.True(t, view.BeginEdit(note.ID))

		id, editing := view.Editing()
		assert.True(t, editing)
		assert.Equal(t, note.ID, id)

		changed, err := view.SaveEdit(ctx, note.ID, "standup moved")
		require.NoError(t, err)
		assert.True(t, changed)

		_, editing = view.Editing()
		assert.False(t, editing, "saving exits edit mode")

		require.True(t, view.BeginEdit(note.ID))
		view.CancelEdit()
		_, editing = view.Editing()
		assert.False(t, editing)

		assert.False(t, view.BeginEdit(-1))
	})

	t.Run("Selection Falls Back When Category Is Deleted", func(t *testing.T) {
		_, err := store.DeleteCategory(ctx, "Work")
		require.NoError(t, err)
		assert.Equal(t, "General", view.Selected())
	})
}
