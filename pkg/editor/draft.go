package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"unicode/utf8"
)

// Draft is the content buffer of a note being written.
// It is safe for concurrent use: image uploads append to it from their own
// goroutines.
type Draft struct {
	mu      sync.Mutex
	content string
	// plain drafts hold escaped text; rich is set once markup was added.
	plain bool
	rich  bool

	pending      sync.WaitGroup
	serial       bool
	tail         <-chan struct{}
	maxImageSize int64
	logger       *slog.Logger
}

// DraftOption configures a Draft.
type DraftOption func(*Draft)

// WithSerialUploads makes concurrent image uploads append in the order they
// were started instead of the order they finished.
func WithSerialUploads(enabled bool) DraftOption {
	return func(d *Draft) {
		d.serial = enabled
	}
}

// WithMaxImageSize bounds the size of inlined images.
func WithMaxImageSize(n int64) DraftOption {
	return func(d *Draft) {
		d.maxImageSize = n
	}
}

// WithLogger sets the logger for upload diagnostics.
func WithLogger(logger *slog.Logger) DraftOption {
	return func(d *Draft) {
		d.logger = logger
	}
}

// NewDraft creates a draft holding initial.
func NewDraft(initial string, opts ...DraftOption) *Draft {
	d := &Draft{content: initial, maxImageSize: DefaultMaxImageSize}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewTextDraft creates a draft from plain text. The text is escaped so that
// formats and images can be applied around it, and Commit returns it
// verbatim when no markup was added.
func NewTextDraft(text string, opts ...DraftOption) *Draft {
	d := NewDraft(Escape(text), opts...)
	d.plain = true
	return d
}

// String returns the current content.
func (d *Draft) String() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.content
}

// Set replaces the content, like typing over the whole region.
func (d *Draft) Set(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = content
}

// Append adds text at the end of the content.
func (d *Draft) Append(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content += text
}

// appendMarkup adds markup at the end and marks the draft as rich.
func (d *Draft) appendMarkup(markup string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content += markup
	d.rich = true
}

// Apply wraps the rune range [start, end) of the content in the markup of
// f. An empty range inserts an empty element at start. end < 0 means the
// end of the content.
func (d *Draft) Apply(f Format, start, end int) error {
	if f.tag() == "" {
		return fmt.Errorf("unknown format: %q", string(f))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	n := utf8.RuneCountInString(d.content)
	if end < 0 {
		end = n
	}
	if start < 0 || start > end || end > n {
		return fmt.Errorf("selection [%d,%d) out of range [0,%d]", start, end, n)
	}

	runes := []rune(d.content)
	before, selected, after := string(runes[:start]), string(runes[start:end]), string(runes[end:])
	d.content = before + f.wrap(selected) + after
	d.rich = true
	return nil
}

// ApplyAll wraps the whole content in the markup of f.
func (d *Draft) ApplyAll(f Format) error {
	return d.Apply(f, 0, -1)
}

// Wait blocks until every started upload has settled or ctx is done.
// On ctx done it returns early; the uploads keep running and the helper
// goroutine exits once they settle.
func (d *Draft) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Commit waits for pending uploads and returns the normalized content,
// ready to be handed to core.Store.CreateNote. A text draft without markup
// yields its original text unchanged. The draft is cleared on success, like
// the input box after a note is added.
func (d *Draft) Commit(ctx context.Context) (string, error) {
	if err := d.Wait(ctx); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.plain && !d.rich {
		out := Unescape(d.content)
		d.content = ""
		return out, nil
	}

	out, err := Normalize(d.content)
	if err != nil {
		return "", err
	}
	d.content = ""
	return out, nil
}
