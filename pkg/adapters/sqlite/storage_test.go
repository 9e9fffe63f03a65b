package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/adapters/sqlite"
	"github.com/aretw0/quill/pkg/core"
)

func openStorage(t *testing.T, path string, readOnly bool) *sqlite.Storage {
	t.Helper()
	s, err := sqlite.Open(path, readOnly)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestStorage_GetSet(t *testing.T) {
	ctx := context.Background()
	s := openStorage(t, filepath.Join(t.TempDir(), "quill.db"), false)

	_, found, err := s.Get(ctx, core.NotesKey)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, core.NotesKey, "[]"))
	require.NoError(t, s.Set(ctx, core.NotesKey, `[{"id":1}]`))

	v, found, err := s.Get(ctx, core.NotesKey)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":1}]`, v, "upsert replaces the value")

	state := s.State().(sqlite.StorageState)
	assert.Equal(t, 1, state.Keys)
}

func TestStorage_PersistsAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quill.db")

	store, err := core.Open(ctx, openStorage(t, path, false))
	require.NoError(t, err)
	_, err = store.CreateCategory(ctx, "Ideas")
	require.NoError(t, err)
	_, _, err = store.CreateNote(ctx, "first idea", "Ideas")
	require.NoError(t, err)

	reopened, err := core.Open(ctx, openStorage(t, path, true))
	require.NoError(t, err)
	assert.Equal(t, store.Snapshot(), reopened.Snapshot())

	_, err = reopened.CreateCategory(ctx, "Blocked")
	assert.ErrorIs(t, err, core.ErrReadOnly)
}
