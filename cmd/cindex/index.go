package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gianged/cindex/internal/indexer"
)

var (
	flagIndexForce   bool
	flagIndexWorkers int
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a project tree (incremental by content hash)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}
		root, err := filepath.Abs(root)
		if err != nil {
			return err
		}
		if _, err := os.Stat(root); err != nil {
			return err
		}

		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}

		store, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		workers := cfg.Index.Workers
		if flagIndexWorkers > 0 {
			workers = flagIndexWorkers
		}

		logger.Info("indexing", "path", root)
		stats, err := indexer.New(store).IndexProject(cmd.Context(), root, &indexer.Config{
			Workers:         workers,
			BatchSize:       cfg.Index.BatchSize,
			IncludePatterns: cfg.Index.IncludePatterns,
			ExcludePatterns: cfg.Index.ExcludePatterns,
			Force:           flagIndexForce,
		})
		if err != nil {
			return err
		}

		logger.Info("indexing complete",
			"indexed", stats.FilesIndexed,
			"skipped", stats.FilesSkipped,
			"failed", stats.FilesFailed,
			"symbols", stats.SymbolsExtracted,
			"chunks", stats.ChunksCreated,
			"duration", stats.Duration)

		for _, msg := range stats.ErrorMessages {
			logger.Warn("file failed", "error", msg)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVar(&flagIndexForce, "force", false, "re-index all files ignoring content hashes")
	indexCmd.Flags().IntVar(&flagIndexWorkers, "workers", 0, "number of concurrent workers (default: CPU count)")
}
