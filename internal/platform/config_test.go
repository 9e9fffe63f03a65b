package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadConfig_Empty(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), `
adapter: sqlite
versioning: true
cache_size: 16
time_layout: "2006-01-02 15:04"
sqlite:
  path: data/notes.db
redis:
  addr: localhost:6380
  prefix: team
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Adapter)
	assert.True(t, cfg.Versioning)
	assert.Equal(t, 16, cfg.CacheSize)
	assert.Equal(t, "2006-01-02 15:04", cfg.TimeLayout)
	assert.Equal(t, "localhost:6380", cfg.Redis.Addr)
	assert.Equal(t, "team", cfg.Redis.Prefix)
	assert.Equal(t, filepath.Join(dir, "data", "notes.db"), cfg.URI(dir))
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), "adapter: [unclosed")

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfig_DotEnvAndEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFile), "adapter: fs\n")
	writeFile(t, filepath.Join(dir, ".env"), "QUILL_ADAPTER=redis\nQUILL_REDIS_ADDR=from-dotenv:6379\n")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Adapter)
	assert.Equal(t, "from-dotenv:6379", cfg.Redis.Addr)

	t.Setenv(EnvRedisAddr, "from-env:6379")
	cfg, err = LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-env:6379", cfg.URI(dir))
}

func TestLoadConfig_InvalidCacheSize(t *testing.T) {
	t.Setenv(EnvCacheSize, "lots")
	_, err := LoadConfig(t.TempDir())
	assert.Error(t, err)
}

func TestConfig_URI(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"fs default", Config{}, dir},
		{"memory", Config{Adapter: "memory"}, ""},
		{"sqlite default file", Config{Adapter: "sqlite"}, filepath.Join(dir, DefaultSQLiteFile)},
		{"sqlite absolute", Config{Adapter: "sqlite", SQLite: struct {
			Path string `yaml:"path"`
		}{Path: "/var/quill.db"}}, "/var/quill.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.URI(dir))
		})
	}
}
