// Package lifecycle bridges storage change events to the
// github.com/aretw0/lifecycle Source interface.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/quill/pkg/core"
)

// Reloader is satisfied by *core.Store.
type Reloader interface {
	Reload(ctx context.Context) error
}

type keySource struct {
	events   <-chan core.Event
	out      chan lifecycle.Event
	reloader Reloader
	onError  func(error)
}

// SourceOption configures a Source.
type SourceOption func(*keySource)

// WithReload reloads r before each event is forwarded, so consumers always
// observe the store in its post-change state.
func WithReload(r Reloader) SourceOption {
	return func(s *keySource) {
		s.reloader = r
	}
}

// WithErrorHandler receives reload failures. The event is still forwarded.
func WithErrorHandler(fn func(error)) SourceOption {
	return func(s *keySource) {
		s.onError = fn
	}
}

// NewSource creates a lifecycle.Source emitting storage key events.
func NewSource(events <-chan core.Event, opts ...SourceOption) lifecycle.Source {
	s := &keySource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *keySource) Events() <-chan lifecycle.Event {
	return s.out
}

func (s *keySource) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				s.reload(ctx, e)
				// core.Event implements lifecycle.Event (has String())
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}

func (s *keySource) reload(ctx context.Context, e core.Event) {
	if s.reloader == nil {
		return
	}
	if e.Key != core.NotesKey && e.Key != core.CategoriesKey {
		return
	}
	if err := s.reloader.Reload(ctx); err != nil && s.onError != nil {
		s.onError(err)
	}
}
