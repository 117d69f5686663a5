package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/notify"
)

var queueSession sessionFlags

var queueCmd = &cobra.Command{
	Use:   "queue <query> [query...]",
	Short: "Play several songs in order",
	Long: `Search for each query and play the matches one after another.

The first match starts playing and the rest go into the priority queue, in
the order given. Queries with no match are skipped with a warning.

Examples:
  harmony queue "kesariya" "tum hi ho" "raataan lambiyan"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQueue,
}

func init() {
	queueSession.register(queueCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	notes := notify.NewChannel(16)
	rt, err := newRuntime(ctx, runtimeOptions{console: stderrLogs(), notes: notes, session: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	go printNotices(ctx, notes)

	tracks := resolveQueries(ctx, rt, args)
	if len(tracks) == 0 {
		return fmt.Errorf("no results found for any query")
	}

	return runSession(ctx, rt, &queueSession, func(ctx context.Context) error {
		if err := rt.store.PlayTrack(ctx, tracks[0], nil); err != nil {
			return err
		}
		for _, t := range tracks[1:] {
			if err := rt.store.AddToQueue(t); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: skipped %s: %v\n", t.Name, err)
			}
		}
		if !JSONOutput() {
			fmt.Printf("▶ Playing %s by %s, %d queued\n", tracks[0].Name, tracks[0].PrimaryArtists, len(tracks)-1)
		}
		return nil
	})
}

// resolveQueries searches each query and keeps the first match of each.
func resolveQueries(ctx context.Context, rt *runtime, queries []string) []core.Track {
	var tracks []core.Track
	for _, q := range queries {
		t, err := searchFirst(ctx, rt, q)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %q: %v\n", q, err)
			continue
		}
		tracks = append(tracks, t)
	}
	return tracks
}
