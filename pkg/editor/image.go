package editor

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aretw0/lifecycle"
	"github.com/google/uuid"
)

// DefaultMaxImageSize bounds the size of an inlined image.
const DefaultMaxImageSize = 5 << 20

// ReadImage reads the image at path and returns it as a data URI.
// Files that do not sniff as image/* or exceed maxBytes are rejected.
func ReadImage(ctx context.Context, path string, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageSize
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("image %s exceeds %d bytes", filepath.Base(path), maxBytes)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", filepath.Base(path), mime)
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// imageMarkup renders the inline element appended for an uploaded image.
func imageMarkup(dataURI, name string) string {
	return `<img src="` + dataURI + `" alt="` + html.EscapeString(name) + `">`
}

// Upload is the future of an asynchronous image attachment.
type Upload struct {
	ID   string
	Path string

	done chan struct{}
	once sync.Once
	err  error
}

func newUpload(path string) *Upload {
	return &Upload{
		ID:   uuid.NewString(),
		Path: path,
		done: make(chan struct{}),
	}
}

func (u *Upload) resolve(err error) {
	u.once.Do(func() {
		u.err = err
		close(u.done)
	})
}

// Done is closed once the image was appended or the upload failed.
func (u *Upload) Done() <-chan struct{} {
	return u.done
}

// Wait blocks until the upload settles or ctx is done.
func (u *Upload) Wait(ctx context.Context) error {
	select {
	case <-u.done:
		return u.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the upload error. Only meaningful after Done is closed.
func (u *Upload) Err() error {
	select {
	case <-u.done:
		return u.err
	default:
		return nil
	}
}

// AttachImage starts reading path in the background and appends the image
// to the draft when the read completes. Concurrent uploads append in
// completion order unless the draft was created WithSerialUploads, in
// which case they append in the order AttachImage was called.
func (d *Draft) AttachImage(ctx context.Context, path string) *Upload {
	u := newUpload(path)

	d.mu.Lock()
	prev := d.tail
	if d.serial {
		d.tail = u.done
	}
	d.pending.Add(1)
	d.mu.Unlock()

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer d.pending.Done()

		uri, err := ReadImage(ctx, path, d.maxImageSize)

		if d.serial && prev != nil {
			select {
			case <-prev:
			case <-ctx.Done():
				if err == nil {
					err = ctx.Err()
				}
			}
		}

		if err != nil {
			if d.logger != nil {
				d.logger.Warn("image upload failed", "upload", u.ID, "path", path, "error", err)
			}
			u.resolve(err)
			return err
		}

		d.appendMarkup(imageMarkup(uri, filepath.Base(path)))
		if d.logger != nil {
			d.logger.Debug("image attached", "upload", u.ID, "path", path, "bytes", len(uri))
		}
		u.resolve(nil)
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		// Panics inside the read must still settle the future.
		u.resolve(fmt.Errorf("image upload panic: %w", err))
	}))

	return u
}
