package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/core"
)

// fakeClock returns a fixed instant that moves forward one minute per call.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(time.Minute)
	return t
}

func openStore(t *testing.T, opts ...core.Option) (*core.Store, *memory.Storage) {
	t.Helper()
	storage := memory.New()
	opts = append([]core.Option{core.WithClock(newFakeClock().Now)}, opts...)
	store, err := core.Open(context.Background(), storage, opts...)
	require.NoError(t, err)
	return store, storage
}

func TestOpen_Defaults(t *testing.T) {
	store, storage := openStore(t)

	assert.Empty(t, store.Notes())
	assert.Equal(t, []string{"General", "Work", "Personal", "Study"}, store.Categories())
	assert.Zero(t, storage.Writes(), "loading must not write")
}

func TestCreateNote(t *testing.T) {
	ctx := context.Background()

	t.Run("Blank Content Is a No-op", func(t *testing.T) {
		store, storage := openStore(t)

		for _, content := range []string{"", "   ", "\n\t"} {
			note, changed, err := store.CreateNote(ctx, content, "General")
			require.NoError(t, err)
			assert.False(t, changed)
			assert.Zero(t, note)
		}
		assert.Empty(t, store.Notes())
		assert.Zero(t, storage.Writes())
	})

	t.Run("Creates Note at Front", func(t *testing.T) {
		store, _ := openStore(t)

		note, changed, err := store.CreateNote(ctx, "Buy milk", "General")
		require.NoError(t, err)
		require.True(t, changed)

		notes := store.Notes()
		require.Len(t, notes, 1)
		assert.Equal(t, note, notes[0])
		assert.Equal(t, "Buy milk", note.Content)
		assert.Equal(t, "General", note.Category)
		assert.Equal(t, note.CreatedAt, note.UpdatedAt)
		assert.Equal(t, "3/9/2024, 2:05:00 PM", note.CreatedAt)
	})

	t.Run("Newest First", func(t *testing.T) {
		store, _ := openStore(t)

		a, _, err := store.CreateNote(ctx, "A", "General")
		require.NoError(t, err)
		b, _, err := store.CreateNote(ctx, "B", "General")
		require.NoError(t, err)

		notes := store.Notes()
		require.Len(t, notes, 2)
		assert.Equal(t, []int64{b.ID, a.ID}, []int64{notes[0].ID, notes[1].ID})
	})

	t.Run("Unique IDs With Frozen Clock", func(t *testing.T) {
		frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		store, _ := openStore(t, core.WithClock(func() time.Time { return frozen }))

		seen := map[int64]bool{}
		for i := 0; i < 5; i++ {
			n, changed, err := store.CreateNote(ctx, "same instant", "Work")
			require.NoError(t, err)
			require.True(t, changed)
			assert.False(t, seen[n.ID], "duplicate id %d", n.ID)
			seen[n.ID] = true
		}
	})

	t.Run("Unknown Category Is a No-op", func(t *testing.T) {
		store, storage := openStore(t)

		_, changed, err := store.CreateNote(ctx, "orphan", "Nope")
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, store.Notes())
		assert.Zero(t, storage.Writes())
	})
}

func TestUpdateNote(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	note, _, err := store.CreateNote(ctx, "draft", "Work")
	require.NoError(t, err)

	changed, err := store.UpdateNote(ctx, note.ID, "final")
	require.NoError(t, err)
	require.True(t, changed)

	got, ok := store.Note(note.ID)
	require.True(t, ok)
	assert.Equal(t, "final", got.Content)
	assert.Equal(t, note.ID, got.ID)
	assert.Equal(t, note.Category, got.Category)
	assert.Equal(t, note.CreatedAt, got.CreatedAt)
	assert.NotEqual(t, note.UpdatedAt, got.UpdatedAt, "UpdatedAt should advance")

	before := store.Snapshot()
	changed, err = store.UpdateNote(ctx, 42, "ghost")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Empty(t, cmp.Diff(before, store.Snapshot()))
}

func TestDeleteNote(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	a, _, _ := store.CreateNote(ctx, "A", "General")
	b, _, _ := store.CreateNote(ctx, "B", "Work")
	c, _, _ := store.CreateNote(ctx, "C", "General")

	changed, err := store.DeleteNote(ctx, b.ID)
	require.NoError(t, err)
	require.True(t, changed)

	ids := []int64{}
	for _, n := range store.Notes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []int64{c.ID, a.ID}, ids)

	changed, err = store.DeleteNote(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, changed, "deleting twice is a no-op")
	assert.Len(t, store.Notes(), 2)
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	store, storage := openStore(t)

	for _, name := range []string{"", "  ", "Work"} {
		changed, err := store.CreateCategory(ctx, name)
		require.NoError(t, err)
		assert.False(t, changed, "%q should be rejected", name)
	}
	assert.Zero(t, storage.Writes())

	changed, err := store.CreateCategory(ctx, "work")
	require.NoError(t, err)
	assert.True(t, changed, "names are case-sensitive")
	assert.Equal(t, []string{"General", "Work", "Personal", "Study", "work"}, store.Categories())
}

func TestDeleteCategory_DoesNotCascade(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	note, _, err := store.CreateNote(ctx, "keep me", "Study")
	require.NoError(t, err)

	changed, err := store.DeleteCategory(ctx, "Study")
	require.NoError(t, err)
	require.True(t, changed)
	assert.NotContains(t, store.Categories(), "Study")

	got, ok := store.Note(note.ID)
	require.True(t, ok, "notes survive their category")
	assert.Equal(t, "Study", got.Category)

	_, changed, err = store.CreateNote(ctx, "new", "Study")
	require.NoError(t, err)
	assert.False(t, changed, "removed category is no longer selectable")

	changed, err = store.DeleteCategory(ctx, "Study")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestListNotesByCategory(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	w1, _, _ := store.CreateNote(ctx, "w1", "Work")
	_, _, _ = store.CreateNote(ctx, "g1", "General")
	w2, _, _ := store.CreateNote(ctx, "w2", "Work")

	work := store.ListNotesByCategory("Work")
	require.Len(t, work, 2)
	assert.Equal(t, w2.ID, work[0].ID)
	assert.Equal(t, w1.ID, work[1].ID)

	assert.Empty(t, store.ListNotesByCategory("work"))
	assert.NotNil(t, store.ListNotesByCategory("Nothing"))
}

func TestListNotesMatching(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	_, _, _ = store.CreateNote(ctx, "w", "Work")
	_, _, _ = store.CreateNote(ctx, "p", "Personal")
	_, _, _ = store.CreateNote(ctx, "s", "Study")

	got, err := store.ListNotesMatching("{Work,Study}")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s", got[0].Content)
	assert.Equal(t, "w", got[1].Content)

	got, err = store.ListNotesMatching("P*")
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = store.ListNotesMatching("[")
	assert.Error(t, err)
}

// flakyStorage fails the first n writes.
type flakyStorage struct {
	*memory.Storage
	failures int
	calls    int
}

func (f *flakyStorage) Set(ctx context.Context, key, value string) error {
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.Storage.Set(ctx, key, value)
}

func TestPersistence_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("Retries Transient Failures", func(t *testing.T) {
		storage := &flakyStorage{Storage: memory.New(), failures: 2}
		store, err := core.Open(ctx, storage, core.WithRetry(3, 0))
		require.NoError(t, err)

		_, changed, err := store.CreateNote(ctx, "eventually", "General")
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Len(t, store.Notes(), 1)
	})

	t.Run("Failed Write Leaves State Unchanged", func(t *testing.T) {
		storage := &flakyStorage{Storage: memory.New(), failures: 100}
		store, err := core.Open(ctx, storage, core.WithRetry(2, 0))
		require.NoError(t, err)

		_, changed, err := store.CreateNote(ctx, "lost", "General")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrPersist)
		assert.False(t, changed)
		assert.Empty(t, store.Notes())
		assert.Equal(t, 2, storage.calls)
	})

	t.Run("Read-only Is Not Retried", func(t *testing.T) {
		storage := &readOnlyStorage{Storage: memory.New()}
		store, err := core.Open(ctx, storage, core.WithRetry(5, 0))
		require.NoError(t, err)

		_, err = store.CreateCategory(ctx, "Ideas")
		assert.ErrorIs(t, err, core.ErrReadOnly)
		assert.Equal(t, 1, storage.calls)
	})

	t.Run("Canceled Context Stops Retrying", func(t *testing.T) {
		storage := &flakyStorage{Storage: memory.New(), failures: 100}
		store, err := core.Open(ctx, storage, core.WithRetry(5, time.Hour))
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = store.CreateCategory(cctx, "Ideas")
		assert.ErrorIs(t, err, core.ErrPersist)
		assert.Equal(t, 1, storage.calls)
	})
}

// keyFailStorage fails every write of one key, and every write after
// allowed successful ones when allowed >= 0.
type keyFailStorage struct {
	*memory.Storage
	key     string
	allowed int
}

func (k *keyFailStorage) Set(ctx context.Context, key, value string) error {
	if key == k.key || k.allowed == 0 {
		return errors.New("quota exceeded")
	}
	if k.allowed > 0 {
		k.allowed--
	}
	return k.Storage.Set(ctx, key, value)
}

func TestPersistence_PartialWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("Second Key Failure Restores First", func(t *testing.T) {
		storage := &keyFailStorage{Storage: memory.New(), key: core.CategoriesKey, allowed: -1}
		store, err := core.Open(ctx, storage, core.WithRetry(2, 0))
		require.NoError(t, err)

		_, changed, err := store.CreateNote(ctx, "lost?", "General")
		assert.ErrorIs(t, err, core.ErrPersist)
		assert.False(t, changed)
		assert.Empty(t, store.Notes())

		raw, ok, err := storage.Storage.Get(ctx, core.NotesKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "[]", raw)

		reopened, err := core.Open(ctx, storage.Storage)
		require.NoError(t, err)
		assert.Empty(t, reopened.Notes())
	})

	t.Run("Failed Rollback Is Reported", func(t *testing.T) {
		storage := &keyFailStorage{Storage: memory.New(), key: core.CategoriesKey, allowed: 1}
		store, err := core.Open(ctx, storage, core.WithRetry(1, 0))
		require.NoError(t, err)

		_, _, err = store.CreateNote(ctx, "half", "General")
		assert.ErrorIs(t, err, core.ErrPersist)
		assert.ErrorContains(t, err, "rollback")
		assert.Empty(t, store.Notes())
	})
}

type readOnlyStorage struct {
	*memory.Storage
	calls int
}

func (r *readOnlyStorage) Set(ctx context.Context, key, value string) error {
	r.calls++
	return core.ErrReadOnly
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, storage := openStore(t)

	_, _ = store.CreateCategory(ctx, "Ideas")
	_, _, _ = store.CreateNote(ctx, "one", "Ideas")
	n2, _, _ := store.CreateNote(ctx, "<b>two</b>", "Work")
	_, _ = store.UpdateNote(ctx, n2.ID, "<i>two</i>")

	reloaded, err := core.Open(ctx, storage)
	require.NoError(t, err)

	if diff := cmp.Diff(store.Snapshot(), reloaded.Snapshot()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	// IDs keep increasing after a reload.
	n3, _, err := reloaded.CreateNote(ctx, "three", "General")
	require.NoError(t, err)
	assert.Greater(t, n3.ID, n2.ID)
}

func TestEndToEnd_IdeasScenario(t *testing.T) {
	ctx := context.Background()
	store, _ := openStore(t)

	require.Equal(t, []string{"General", "Work", "Personal", "Study"}, store.Categories())
	require.Empty(t, store.Notes())

	_, err := store.CreateCategory(ctx, "Ideas")
	require.NoError(t, err)
	_, _, err = store.CreateNote(ctx, "first idea", "Ideas")
	require.NoError(t, err)

	categories := store.Categories()
	assert.Equal(t, "Ideas", categories[len(categories)-1])

	ideas := store.ListNotesByCategory("Ideas")
	require.Len(t, ideas, 1)
	assert.Equal(t, "first idea", ideas[0].Content)
}

func TestStore_State(t *testing.T) {
	store, _ := openStore(t)
	_, _, _ = store.CreateNote(context.Background(), "x", "General")

	state, ok := store.State().(core.StoreState)
	require.True(t, ok)
	assert.Equal(t, 1, state.Notes)
	assert.Equal(t, 4, state.Categories)
	assert.Equal(t, "memory", state.StorageType)
	assert.Equal(t, "store", store.ComponentType())
}
