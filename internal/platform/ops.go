package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/quill/pkg/adapters/cache"
	"github.com/aretw0/quill/pkg/adapters/fs"
	"github.com/aretw0/quill/pkg/adapters/memory"
	"github.com/aretw0/quill/pkg/adapters/redis"
	"github.com/aretw0/quill/pkg/adapters/sqlite"
	"github.com/aretw0/quill/pkg/core"
)

// DefaultSQLiteFile is used when the sqlite adapter gets no path.
const DefaultSQLiteFile = "quill.db"

// ErrUnknownAdapter is returned for adapter names Init does not know.
var ErrUnknownAdapter = errors.New("unknown adapter")

// Init builds and initializes the storage selected by the options.
// The 'uri' argument is adapter-specific: a directory for "fs", a database
// file for "sqlite", an address or redis:// URL for "redis"; "memory"
// ignores it.
func Init(ctx context.Context, uri string, opts ...Option) (core.Storage, error) {
	o := applyOptions(opts)
	return initStorage(ctx, uri, o)
}

func initStorage(ctx context.Context, uri string, o *options) (core.Storage, error) {
	if o.storage != nil {
		return o.storage, nil
	}

	readOnly, _ := o.config["read_only"].(bool)

	var storage core.Storage
	var err error
	initialized := false

	switch o.adapter {
	case "fs":
		storage, err = initFS(ctx, uri, o)
		initialized = true
	case "memory":
		storage = memory.New()
	case "redis":
		storage, err = initRedis(uri, o)
	case "sqlite":
		if uri == "" {
			uri = DefaultSQLiteFile
		}
		storage, err = sqlite.Open(uri, readOnly)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAdapter, o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if in, ok := storage.(core.Initializer); ok && !initialized {
		if err := in.Initialize(ctx); err != nil {
			return nil, err
		}
	}

	if size, _ := o.config["cache_size"].(int); size > 0 {
		cached, err := cache.New(storage, size)
		if err != nil {
			return nil, err
		}
		storage = cached
	}

	if o.logger != nil {
		o.logger.Debug("storage ready", "adapter", o.adapter, "uri", uri, "read_only", readOnly)
	}
	return storage, nil
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(ctx context.Context, path string, o *options) (core.Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("fs adapter needs a vault path")
	}

	forceTemp, _ := o.config["force_temp"].(bool)
	path = ResolveVaultPath(path, forceTemp || IsDevRun())

	autoInit, _ := o.config["auto_init"].(bool)
	versioning, _ := o.config["versioning"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	readOnly, _ := o.config["read_only"].(bool)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	repo := fs.NewRepository(fs.Config{
		Path:         abs,
		AutoInit:     autoInit,
		Gitless:      !versioning,
		MustExist:    mustExist || !autoInit,
		ReadOnly:     readOnly,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
	})

	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	if autoInit && !readOnly {
		if err := os.MkdirAll(filepath.Join(abs, SystemDir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", SystemDir, err)
		}
	}

	return repo, nil
}

func initRedis(uri string, o *options) (core.Storage, error) {
	var ropts *goredis.Options
	if strings.Contains(uri, "://") {
		parsed, err := goredis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		ropts = parsed
	} else {
		if uri == "" {
			uri = "localhost:6379"
		}
		ropts = &goredis.Options{Addr: uri}
	}

	prefix, _ := o.config["redis_prefix"].(string)
	readOnly, _ := o.config["read_only"].(bool)

	return redis.New(goredis.NewClient(ropts),
		redis.WithPrefix(prefix),
		redis.WithReadOnly(readOnly),
	), nil
}
