package platform

import (
	"context"

	"github.com/aretw0/quill/pkg/core"
)

// New initializes the storage named by the options and opens a Store on it.
//
//	store, err := quill.New(ctx, "./vault", quill.WithAutoInit(true))
func New(ctx context.Context, uri string, opts ...Option) (*core.Store, error) {
	o := applyOptions(opts)

	storage, err := initStorage(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	storeOpts := append([]core.Option{core.WithLogger(o.logger)}, o.storeOpts...)
	return core.Open(ctx, storage, storeOpts...)
}
