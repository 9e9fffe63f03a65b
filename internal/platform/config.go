package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override quill.yaml.
const (
	EnvAdapter     = "QUILL_ADAPTER"
	EnvRedisAddr   = "QUILL_REDIS_ADDR"
	EnvRedisPrefix = "QUILL_REDIS_PREFIX"
	EnvSQLitePath  = "QUILL_SQLITE_PATH"
	EnvCacheSize   = "QUILL_CACHE_SIZE"
)

// Config is the on-disk vault configuration (quill.yaml).
type Config struct {
	Adapter        string `yaml:"adapter"`
	Versioning     bool   `yaml:"versioning"`
	ReadOnly       bool   `yaml:"read_only"`
	CacheSize      int    `yaml:"cache_size"`
	TimeLayout     string `yaml:"time_layout"`
	RecoverCorrupt bool   `yaml:"recover_corrupt"`

	Redis struct {
		Addr   string `yaml:"addr"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`

	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
}

// LoadConfig reads quill.yaml and .env from dir, both optional.
// Values from .env fill in for unset process variables; the process
// environment always wins.
func LoadConfig(dir string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, err
	}

	env, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("invalid .env: %w", err)
		}
		env = map[string]string{}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	}

	if v, ok := lookup(EnvAdapter); ok && v != "" {
		cfg.Adapter = v
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		cfg.Redis.Addr = v
	}
	if v, ok := lookup(EnvRedisPrefix); ok && v != "" {
		cfg.Redis.Prefix = v
	}
	if v, ok := lookup(EnvSQLitePath); ok && v != "" {
		cfg.SQLite.Path = v
	}
	if v, ok := lookup(EnvCacheSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvCacheSize, err)
		}
		cfg.CacheSize = n
	}

	return cfg, nil
}

// URI returns the adapter-specific location for a vault rooted at dir.
func (c Config) URI(dir string) string {
	switch c.Adapter {
	case "redis":
		return c.Redis.Addr
	case "sqlite":
		if c.SQLite.Path == "" {
			return filepath.Join(dir, DefaultSQLiteFile)
		}
		if filepath.IsAbs(c.SQLite.Path) {
			return c.SQLite.Path
		}
		return filepath.Join(dir, c.SQLite.Path)
	case "memory":
		return ""
	default:
		return dir
	}
}

// Options translates the configuration into functional options.
// Options passed explicitly afterwards take precedence.
func (c Config) Options() []Option {
	opts := []Option{
		WithAdapter(c.Adapter),
		WithVersioning(c.Versioning),
		WithReadOnly(c.ReadOnly),
		WithCacheSize(c.CacheSize),
		WithRecoverCorrupt(c.RecoverCorrupt),
	}
	if c.Redis.Prefix != "" {
		opts = append(opts, WithRedisPrefix(c.Redis.Prefix))
	}
	if c.TimeLayout != "" {
		opts = append(opts, WithTimeLayout(c.TimeLayout))
	}
	return opts
}
