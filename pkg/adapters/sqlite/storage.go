// Package sqlite implements core.Storage on a SQLite database using the
// pure Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/aretw0/quill/pkg/core"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Storage keeps every key as a row of the kv table.
type Storage struct {
	db       *sql.DB
	path     string
	readOnly bool
}

// Open opens (or creates) the database at path.
func Open(path string, readOnly bool) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return &Storage{db: db, path: path, readOnly: readOnly}, nil
}

// Initialize creates the schema.
func (s *Storage) Initialize(ctx context.Context) error {
	if s.readOnly {
		return s.db.PingContext(ctx)
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite get %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements core.Storage.
func (s *Storage) Set(ctx context.Context, key, value string) error {
	if s.readOnly {
		return core.ErrReadOnly
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("sqlite set %s: %w", key, err)
	}
	return nil
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Path     string `json:"path"`
	Keys     int    `json:"keys"`
	ReadOnly bool   `json:"read_only"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	var keys int
	_ = s.db.QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&keys)
	return StorageState{Path: s.path, Keys: keys, ReadOnly: s.readOnly}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sqlite"
}

var _ core.Storage = (*Storage)(nil)
var _ core.Initializer = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
