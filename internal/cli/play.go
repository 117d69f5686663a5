package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/fuzzy"
	"github.com/FL1CKfps/Harmony-player/internal/notify"
	"github.com/FL1CKfps/Harmony-player/internal/wizard"
)

var (
	playShuffle  bool
	playLiked    bool
	playPlaylist string
	playRepeat   string
	playSession  sessionFlags
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Play a song, a playlist or your liked songs",
	Long: `Play a song, a playlist or your liked songs and follow playback until
the queue runs out. When a single song ends, Harmony keeps going with
suggestions based on what you have been listening to.

Without a query in a terminal, an interactive search opens.

Examples:
  harmony play "kesariya"            # Search and play a song
  harmony play --playlist "Road Trip" # Play a playlist in order
  harmony play --liked --shuffle      # Shuffle your liked songs
  harmony play --repeat all --playlist Focus`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "shuffle the playlist or liked songs")
	playCmd.Flags().BoolVar(&playLiked, "liked", false, "play liked songs")
	playCmd.Flags().StringVar(&playPlaylist, "playlist", "", "playlist name or ID to play")
	playCmd.Flags().StringVar(&playRepeat, "repeat", "", "repeat mode: off, one or all")
	playSession.register(playCmd)
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	notes := notify.NewChannel(16)
	rt, err := newRuntime(ctx, runtimeOptions{console: stderrLogs(), notes: notes, session: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	go printNotices(ctx, notes)

	if playRepeat != "" {
		applyRepeat(rt, parseRepeat(playRepeat))
	}

	start, err := playTarget(ctx, rt, args)
	if err != nil || start == nil {
		return err
	}
	return runSession(ctx, rt, &playSession, start)
}

// playTarget resolves what to play. A nil start with a nil error means the
// user cancelled the interactive search.
func playTarget(ctx context.Context, rt *runtime, args []string) (func(context.Context) error, error) {
	switch {
	case playLiked:
		if len(rt.store.LikedSongs()) == 0 {
			return nil, herrors.WithSuggestion(fmt.Errorf("no liked songs yet"),
				"Like a song with 'harmony liked add <query>'")
		}
		return func(ctx context.Context) error {
			return rt.store.PlayLikedSongs(ctx, playShuffle)
		}, nil

	case playPlaylist != "":
		p, err := findPlaylist(rt, playPlaylist)
		if err != nil {
			return nil, err
		}
		if len(p.Tracks) == 0 {
			return nil, fmt.Errorf("playlist %q is empty", p.Name)
		}
		return func(ctx context.Context) error {
			return rt.store.PlayPlaylist(ctx, p.ID, playShuffle)
		}, nil
	}

	var track *core.Track
	if wizard.NeedsQuery(args) {
		var err error
		track, err = promptTrack(ctx, rt)
		if err != nil {
			return nil, err
		}
		if track == nil {
			return nil, nil
		}
	} else {
		t, err := searchFirst(ctx, rt, strings.Join(args, " "))
		if err != nil {
			return nil, err
		}
		track = &t
	}

	return func(ctx context.Context) error {
		if !JSONOutput() {
			fmt.Printf("▶ Playing %s by %s\n", track.Name, track.PrimaryArtists)
		}
		return rt.store.PlayTrack(ctx, *track, nil)
	}, nil
}

// searchFirst returns the best playable match for query.
func searchFirst(ctx context.Context, rt *runtime, query string) (core.Track, error) {
	results, err := rt.store.Search(ctx, query)
	if err != nil {
		return core.Track{}, fmt.Errorf("search failed: %w", err)
	}
	if len(results) == 0 {
		return core.Track{}, herrors.WithSuggestion(fmt.Errorf("no results found for '%s'", query),
			"Try a different spelling, or add the artist name")
	}
	return results[0], nil
}

// promptTrack opens the interactive search when a terminal is attached.
func promptTrack(ctx context.Context, rt *runtime) (*core.Track, error) {
	interactive := wizard.NewInteractive()
	interactive.SetEnabled(!JSONOutput())
	if !interactive.CanInteract() {
		return nil, fmt.Errorf("a search query is required when not running in a terminal")
	}
	interactive.SetSearchFunc(searchScope(ctx, rt))
	return interactive.PromptSearch()
}

// searchScope adapts the store to the search wizard. Liked and recent
// scopes are filtered locally.
func searchScope(ctx context.Context, rt *runtime) wizard.SearchFunc {
	return func(query string, scope wizard.Scope) ([]core.Track, error) {
		switch scope {
		case wizard.ScopeLiked:
			return filterTracks(rt.store.LikedSongs(), query), nil
		case wizard.ScopeRecent:
			recent := rt.store.RecentlyPlayed()
			tracks := make([]core.Track, len(recent))
			for i, r := range recent {
				tracks[i] = r.Track
			}
			return filterTracks(tracks, query), nil
		default:
			return rt.store.Search(ctx, query)
		}
	}
}

// filterTracks keeps the tracks whose title, artist or album loosely
// matches query. A blank query keeps everything.
func filterTracks(tracks []core.Track, query string) []core.Track {
	if strings.TrimSpace(query) == "" {
		return tracks
	}
	var out []core.Track
	for _, t := range tracks {
		if fuzzy.Contains(t.Name, query) || fuzzy.Contains(t.PrimaryArtists, query) || fuzzy.Contains(t.Album, query) {
			out = append(out, t)
		}
	}
	return out
}

// applyRepeat cycles the store to mode.
func applyRepeat(rt *runtime, mode core.RepeatMode) {
	for range 3 {
		if rt.store.State().Repeat == mode {
			return
		}
		rt.store.ToggleRepeat()
	}
	fmt.Fprintf(os.Stderr, "Warning: could not set repeat to %s\n", mode)
}
