package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gianged/cindex/internal/config"
	"github.com/gianged/cindex/internal/storage"
)

var (
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "cindex",
	Short: "Structural indexer and search for C-family codebases",
	Long: `cindex parses C-family sources (C, C++, C#, Java) into declaration
trees and maintains a searchable SQLite index over symbols and code chunks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: false,
})

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: .cindex.yaml in the project root)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "directory holding the index database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug|info|warn|error)")

	cobra.OnInitialize(func() {
		switch flagLogLevel {
		case "debug":
			logger.SetLevel(log.DebugLevel)
		case "warn":
			logger.SetLevel(log.WarnLevel)
		case "error":
			logger.SetLevel(log.ErrorLevel)
		default:
			logger.SetLevel(log.InfoLevel)
		}
	})

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration for a project directory, applying
// the --db flag on top
func loadConfig(projectDir string) (*config.Config, error) {
	cfg, err := config.Load(projectDir, flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDBPath != "" {
		cfg.DBPath = flagDBPath
	}
	return cfg, nil
}

// openStorage opens the index database under the configured directory
func openStorage(cfg *config.Config) (storage.Storage, error) {
	dbDir, err := cfg.ResolveDBPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return storage.NewSQLiteStorage(filepath.Join(dbDir, "cindex.db"))
}
