// Package redis implements core.Storage on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/introspection"
	"github.com/redis/go-redis/v9"

	"github.com/aretw0/quill/pkg/core"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "quill"

// Storage keeps each key as a plain Redis string under "<prefix>:<key>".
type Storage struct {
	client   *redis.Client
	prefix   string
	readOnly bool
}

// Option configures a Storage.
type Option func(*Storage)

// WithPrefix sets the key namespace. Empty keeps DefaultPrefix.
func WithPrefix(prefix string) Option {
	return func(s *Storage) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithReadOnly makes Set return core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(s *Storage) {
		s.readOnly = enabled
	}
}

// New wraps an existing client. The caller keeps ownership of client.
func New(client *redis.Client, opts ...Option) *Storage {
	if client == nil {
		panic("redis.New: client is nil")
	}
	s := &Storage{client: client, prefix: DefaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) key(k string) string {
	return s.prefix + ":" + k
}

// Initialize verifies the server is reachable.
func (s *Storage) Initialize(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set implements core.Storage. Values never expire.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Addr     string `json:"addr"`
	Prefix   string `json:"prefix"`
	ReadOnly bool   `json:"read_only"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	return StorageState{
		Addr:     s.client.Options().Addr,
		Prefix:   s.prefix,
		ReadOnly: s.readOnly,
	}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "redis"
}

var _ core.Storage = (*Storage)(nil)
var _ core.Initializer = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
