package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

var (
	searchLimit    int
	searchTrending bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for songs",
	Long: `Search for playable songs. With --trending and no query, list what is
trending right now.

Examples:
  harmony search "arijit singh"
  harmony search --trending
  harmony search --json "tum hi ho"`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 20, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchTrending, "trending", false, "list trending songs")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	if query == "" && !searchTrending {
		return fmt.Errorf("a search query is required (or use --trending)")
	}

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, runtimeOptions{console: stderrLogs()})
	if err != nil {
		return err
	}
	defer rt.Close()

	var results []core.Track
	if query == "" {
		results, err = rt.store.FetchTrending(ctx)
	} else {
		results, err = rt.store.Search(ctx, query)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}
	return printTracks(results, "No results found")
}
