package fs

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/quill/pkg/core"
)

// Watch reports changes of stored keys made by anyone (this or another
// process). pattern is a glob over key names; "" matches every key.
// The returned channel is closed when ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid watch pattern: %q", pattern)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(r.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", r.Path, err)
	}

	events := make(chan core.Event, 16)
	r.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer r.setWatcherActive(false)
		defer watcher.Close()
		return r.watchLoop(ctx, watcher, pattern, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		r.reportWatchError(fmt.Errorf("watcher panic: %w", err))
	}))

	return events, nil
}

func (r *Repository) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, pattern string, events chan<- core.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			e, ok := r.mapEvent(event, pattern)
			if !ok {
				continue
			}
			if r.config.Logger != nil {
				r.config.Logger.Debug("key changed", "key", e.Key, "type", e.Type)
			}
			select {
			case events <- e:
			case <-ctx.Done():
				return nil
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.reportWatchError(wErr)
		}
	}
}

// mapEvent filters a filesystem event and converts it to a key event.
func (r *Repository) mapEvent(event fsnotify.Event, pattern string) (core.Event, bool) {
	key, ok := r.keyOf(event.Name)
	if !ok {
		return core.Event{}, false
	}
	if match, _ := doublestar.Match(pattern, key); !match {
		return core.Event{}, false
	}

	var t core.EventType
	switch {
	case event.Has(fsnotify.Create):
		t = core.EventCreate
	case event.Has(fsnotify.Write):
		t = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		t = core.EventDelete
	default:
		return core.Event{}, false
	}

	return core.Event{Type: t, Key: key, Timestamp: time.Now().Unix()}, true
}

func (r *Repository) reportWatchError(err error) {
	if r.config.Logger != nil {
		r.config.Logger.Error("fsnotify error", "error", err)
	}
	if r.config.ErrorHandler != nil {
		r.config.ErrorHandler(err)
	}
}
