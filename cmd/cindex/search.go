package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gianged/cindex/internal/searcher"
	"github.com/gianged/cindex/internal/storage"
)

var (
	flagSearchPath        string
	flagSearchLimit       int
	flagSearchMode        string
	flagSearchKinds       []string
	flagSearchVisibility  []string
	flagSearchFilePattern string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search an indexed project",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		root, err := filepath.Abs(flagSearchPath)
		if err != nil {
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

		project, err := store.GetProject(cmd.Context(), root)
		if err != nil {
			return fmt.Errorf("project not indexed, run 'cindex index %s' first", flagSearchPath)
		}

		mode := cfg.Search.Mode
		if flagSearchMode != "" {
			mode = flagSearchMode
		}
		limit := cfg.Search.Limit
		if flagSearchLimit > 0 {
			limit = flagSearchLimit
		}

		var filters *storage.SearchFilters
		if len(flagSearchKinds) > 0 || len(flagSearchVisibility) > 0 || flagSearchFilePattern != "" {
			filters = &storage.SearchFilters{
				SymbolKinds: flagSearchKinds,
				Visibility:  flagSearchVisibility,
				FilePattern: flagSearchFilePattern,
			}
		}

		resp, err := searcher.NewSearcher(store).Search(cmd.Context(), searcher.SearchRequest{
			Query:     query,
			Limit:     limit,
			Mode:      searcher.SearchMode(mode),
			Filters:   filters,
			ProjectID: project.ID,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(resp.Results) == 0 {
			fmt.Fprintln(out, "no results")
			return nil
		}

		for _, r := range resp.Results {
			header := fmt.Sprintf("%s %s %s",
				styleScore.Render(fmt.Sprintf("%2d. %.3f", r.Rank, r.RelevanceScore)),
				styleFilePath.Render(r.File.Path),
				styleLocation.Render(fmt.Sprintf("%d-%d", r.File.StartLine, r.File.EndLine)))
			fmt.Fprintln(out, header)

			if r.Symbol != nil {
				fmt.Fprintf(out, "    %s %s%s\n",
					styleKind.Render(string(r.Symbol.Kind)),
					styleName.Render(r.Symbol.QualifiedName()),
					styleSignature.Render(r.Symbol.Signature))
			}

			for i, line := range strings.Split(r.Content, "\n") {
				if i >= 5 {
					fmt.Fprintln(out, "    "+styleLocation.Render("..."))
					break
				}
				fmt.Fprintln(out, "    "+line)
			}
			fmt.Fprintln(out)
		}

		logger.Debug("search complete", "mode", resp.SearchMode, "results", resp.TotalResults, "duration", resp.Duration)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&flagSearchPath, "path", ".", "project root to search")
	searchCmd.Flags().IntVar(&flagSearchLimit, "limit", 0, "maximum number of results")
	searchCmd.Flags().StringVar(&flagSearchMode, "mode", "", "search mode (hybrid|symbol|keyword)")
	searchCmd.Flags().StringSliceVar(&flagSearchKinds, "kind", nil, "filter by symbol kind")
	searchCmd.Flags().StringSliceVar(&flagSearchVisibility, "visibility", nil, "filter by member visibility")
	searchCmd.Flags().StringVar(&flagSearchFilePattern, "file-pattern", "", "filter by file path glob")
}
