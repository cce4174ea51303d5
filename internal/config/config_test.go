package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, "~/.cindex/indices", cfg.DBPath)
	assert.Equal(t, 10, cfg.Search.Limit)
	assert.Equal(t, "hybrid", cfg.Search.Mode)
	assert.Equal(t, 16, cfg.Index.BatchSize)
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := t.TempDir()
	content := `db_path: /var/lib/cindex
index:
  workers: 4
  exclude_patterns:
    - third_party/**
search:
  limit: 25
  mode: keyword
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))

	cfg, err := Load(dir, "")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/cindex", cfg.DBPath)
	assert.Equal(t, 4, cfg.Index.Workers)
	assert.Equal(t, []string{"third_party/**"}, cfg.Index.ExcludePatterns)
	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, "keyword", cfg.Search.Mode)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  limit: 5\n"), 0o644))

	cfg, err := Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Search.Limit)
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	_, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("search: ["), 0o644))

	_, err := Load(dir, "")
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CINDEX_DB_PATH", "/tmp/override")
	t.Setenv("CINDEX_WORKERS", "3")
	t.Setenv("CINDEX_SEARCH_MODE", "symbol")

	cfg, err := Load(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/override", cfg.DBPath)
	assert.Equal(t, 3, cfg.Index.Workers)
	assert.Equal(t, "symbol", cfg.Search.Mode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad mode", func(c *Config) { c.Search.Mode = "vector" }, true},
		{"limit too low", func(c *Config) { c.Search.Limit = 0 }, true},
		{"limit too high", func(c *Config) { c.Search.Limit = 500 }, true},
		{"negative workers", func(c *Config) { c.Index.Workers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolveDBPath(t *testing.T) {
	cfg := Default()
	cfg.DBPath = "~/indices"

	path, err := cfg.ResolveDBPath()
	require.NoError(t, err)
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "indices"), path)

	cfg.DBPath = "/absolute/indices"
	path, err = cfg.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, "/absolute/indices", path)
}
