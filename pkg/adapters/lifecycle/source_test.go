package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quill/pkg/adapters/lifecycle"
	"github.com/aretw0/quill/pkg/core"
)

type countingReloader struct {
	calls int
	err   error
}

func (c *countingReloader) Reload(context.Context) error {
	c.calls++
	return c.err
}

func TestSource_ForwardsAndReloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	upstream := make(chan core.Event, 2)
	reloader := &countingReloader{err: errors.New("corrupt")}
	var reported []error

	src := lifecycle.NewSource(upstream,
		lifecycle.WithReload(reloader),
		lifecycle.WithErrorHandler(func(err error) { reported = append(reported, err) }),
	)
	require.NoError(t, src.Start(ctx))

	upstream <- core.Event{Type: core.EventModify, Key: core.NotesKey}
	upstream <- core.Event{Type: core.EventCreate, Key: "unrelated"}

	for _, want := range []string{"MODIFY notes", "CREATE unrelated"} {
		select {
		case e := <-src.Events():
			assert.Equal(t, want, e.String())
		case <-time.After(time.Second):
			t.Fatalf("timeout waiting for %q", want)
		}
	}

	assert.Equal(t, 1, reloader.calls, "only store keys trigger a reload")
	assert.Len(t, reported, 1)

	close(upstream)
	select {
	case _, ok := <-src.Events():
		assert.False(t, ok, "closing upstream closes the source")
	case <-time.After(time.Second):
		t.Fatal("source not closed")
	}
}
