// Package config provides configuration loading for the indexer and CLI.
// Precedence (highest to lowest): environment variables (CINDEX_*), a
// .cindex.yaml file, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project-level configuration file name
const ConfigFileName = ".cindex.yaml"

// Config is the resolved application configuration
type Config struct {
	// DBPath is the directory holding the index database
	DBPath string `yaml:"db_path"`

	Index  IndexConfig  `yaml:"index"`
	Search SearchConfig `yaml:"search"`
}

// IndexConfig controls indexing runs
type IndexConfig struct {
	Workers         int      `yaml:"workers"`
	BatchSize       int      `yaml:"batch_size"`
	IncludePatterns []string `yaml:"include_patterns"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// SearchConfig controls search defaults
type SearchConfig struct {
	Limit int    `yaml:"limit"`
	Mode  string `yaml:"mode"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		DBPath: "~/.cindex/indices",
		Index: IndexConfig{
			BatchSize: 16,
		},
		Search: SearchConfig{
			Limit: 10,
			Mode:  "hybrid",
		},
	}
}

// Load resolves the configuration. An explicit path is read as-is; with an
// empty path, .cindex.yaml is looked up in dir and silently skipped when
// absent. Environment variables are applied last.
func Load(dir, explicitPath string) (*Config, error) {
	cfg := Default()

	path := explicitPath
	if path == "" {
		path = filepath.Join(dir, ConfigFileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && explicitPath == "":
		// No project config file; defaults apply
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from CINDEX_* environment variables
func (c *Config) applyEnv() {
	if v := os.Getenv("CINDEX_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CINDEX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Index.Workers = n
		}
	}
	if v := os.Getenv("CINDEX_SEARCH_MODE"); v != "" {
		c.Search.Mode = v
	}
}

// Validate checks field values
func (c *Config) Validate() error {
	switch c.Search.Mode {
	case "hybrid", "symbol", "keyword":
	default:
		return fmt.Errorf("invalid search mode %q", c.Search.Mode)
	}

	if c.Search.Limit < 1 || c.Search.Limit > 100 {
		return fmt.Errorf("search limit must be between 1 and 100, got %d", c.Search.Limit)
	}

	if c.Index.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", c.Index.Workers)
	}

	return nil
}

// ResolveDBPath expands a leading ~ in DBPath to the user home directory
func (c *Config) ResolveDBPath() (string, error) {
	path := c.DBPath
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return path, nil
}
