package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/adapters/memory"
)

func TestStorage_GetSet(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	_, found, err := s.Get(ctx, "notes")
	require.NoError(t, err)
	assert.False(t, found, "fresh storage has no keys")

	require.NoError(t, s.Set(ctx, "notes", "[]"))
	v, found, err := s.Get(ctx, "notes")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[]", v)
	assert.Equal(t, 1, s.Writes())

	s.Clear()
	_, found, _ = s.Get(ctx, "notes")
	assert.False(t, found, "Clear should drop every key")
}

func TestStorage_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := memory.NewWithValues(map[string]string{"k": "v"})
	assert.ErrorIs(t, s.Set(ctx, "k", "x"), context.Canceled)

	_, _, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}
