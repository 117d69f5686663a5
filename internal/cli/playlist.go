package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/wizard"
)

var (
	playlistAddTo  string
	playlistDelYes bool
)

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"playlists", "pl"},
	Short:   "Manage playlists",
	Long:    `Create, edit and list your playlists.`,
	RunE:    runPlaylistList,
}

var playlistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List playlists",
	RunE:  runPlaylistList,
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <playlist>",
	Short: "Show the tracks of a playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistShow,
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a playlist",
	Long: `Create an empty playlist. The name "Liked Songs" is reserved.

Examples:
  harmony playlist create "Road Trip"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlaylistCreate,
}

var playlistRenameCmd = &cobra.Command{
	Use:   "rename <playlist> <new name>",
	Short: "Rename a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPlaylistRename,
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Add a song to a playlist",
	Long: `Search for a song and add the best match to a playlist. Without --to,
a picker opens when a terminal is attached.

Examples:
  harmony playlist add "kesariya" --to "Road Trip"
  harmony playlist add "tum hi ho"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlaylistAdd,
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist> <position|track-id>",
	Short: "Remove a song from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE:  runPlaylistRemove,
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <playlist>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaylistDelete,
}

func init() {
	playlistAddCmd.Flags().StringVar(&playlistAddTo, "to", "", "playlist name or ID")
	playlistDeleteCmd.Flags().BoolVarP(&playlistDelYes, "yes", "y", false, "skip confirmation")

	playlistCmd.AddCommand(playlistListCmd)
	playlistCmd.AddCommand(playlistShowCmd)
	playlistCmd.AddCommand(playlistCreateCmd)
	playlistCmd.AddCommand(playlistRenameCmd)
	playlistCmd.AddCommand(playlistAddCmd)
	playlistCmd.AddCommand(playlistRemoveCmd)
	playlistCmd.AddCommand(playlistDeleteCmd)
	rootCmd.AddCommand(playlistCmd)
}

// libraryRuntime opens the runtime for commands that only touch the
// persisted library.
func libraryRuntime(ctx context.Context) (*runtime, error) {
	return newRuntime(ctx, runtimeOptions{console: stderrLogs()})
}

// findPlaylist resolves a playlist by ID or name.
func findPlaylist(rt *runtime, ref string) (core.Playlist, error) {
	if p := wizard.FindPlaylist(rt.store.Playlists(), ref); p != nil {
		return *p, nil
	}
	return core.Playlist{}, herrors.WithSuggestion(
		fmt.Errorf("%w: %s", herrors.ErrPlaylistNotFound, ref),
		"Run 'harmony playlist list' to see your playlists")
}

func runPlaylistList(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	playlists := rt.store.Playlists()

	if JSONOutput() {
		out := make([]map[string]any, len(playlists))
		for i, p := range playlists {
			out[i] = map[string]any{
				"id":         p.ID,
				"name":       p.Name,
				"tracks":     len(p.Tracks),
				"created_at": p.CreatedAt,
			}
		}
		return printJSON(map[string]any{"playlists": out})
	}

	if len(playlists) == 0 {
		fmt.Println("No playlists yet. Create one with 'harmony playlist create <name>'.")
		return nil
	}

	table := NewTable("NAME", "TRACKS", "CREATED", "ID")
	for _, p := range playlists {
		table.Row(TruncateString(p.Name, 40), strconv.Itoa(len(p.Tracks)), p.CreatedAt.Local().Format("2006-01-02"), p.ID)
	}
	table.Flush()
	return nil
}

func runPlaylistShow(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := findPlaylist(rt, args[0])
	if err != nil {
		return err
	}
	if !JSONOutput() {
		fmt.Printf("%s (%d tracks)\n\n", p.Name, len(p.Tracks))
	}
	return printTracks(p.Tracks, "Playlist is empty")
}

func runPlaylistCreate(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := rt.store.CreatePlaylist(strings.Join(args, " "))
	if err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "created", "id": p.ID, "name": p.Name})
	}
	fmt.Printf("Created playlist %q\n", p.Name)
	return nil
}

func runPlaylistRename(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := findPlaylist(rt, args[0])
	if err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")
	if err := rt.store.RenamePlaylist(p.ID, name); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "renamed", "id": p.ID, "name": strings.TrimSpace(name)})
	}
	fmt.Printf("Renamed %q to %q\n", p.Name, strings.TrimSpace(name))
	return nil
}

func runPlaylistAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := libraryRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	track, err := searchFirst(ctx, rt, strings.Join(args, " "))
	if err != nil {
		return err
	}

	var p core.Playlist
	if playlistAddTo != "" {
		if p, err = findPlaylist(rt, playlistAddTo); err != nil {
			return err
		}
	} else {
		interactive := wizard.NewInteractive()
		interactive.SetEnabled(!JSONOutput())
		interactive.SetPlaylists(rt.store.Playlists())
		picked, err := interactive.PromptPlaylist(track.ID)
		if err != nil {
			return err
		}
		if picked == nil {
			return fmt.Errorf("no playlist selected (use --to <playlist>)")
		}
		p = *picked
	}

	if err := rt.store.AddToPlaylist(p.ID, track); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "added", "playlist": p.ID, "track": track.ID})
	}
	fmt.Printf("Added %s by %s to %q\n", track.Name, track.PrimaryArtists, p.Name)
	return nil
}

func runPlaylistRemove(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := findPlaylist(rt, args[0])
	if err != nil {
		return err
	}
	track, err := pickTrack(p.Tracks, args[1])
	if err != nil {
		return err
	}
	if err := rt.store.RemoveFromPlaylist(p.ID, track.ID); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "removed", "playlist": p.ID, "track": track.ID})
	}
	fmt.Printf("Removed %s from %q\n", track.Name, p.Name)
	return nil
}

func runPlaylistDelete(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	p, err := findPlaylist(rt, args[0])
	if err != nil {
		return err
	}

	if !playlistDelYes && !JSONOutput() && wizard.IsTerminal() {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q?", p.Name)).
			Description(fmt.Sprintf("%d tracks will be removed from it.", len(p.Tracks))).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil {
			return fmt.Errorf("confirmation cancelled: %w", err)
		}
		if !confirmed {
			return nil
		}
	}

	if err := rt.store.DeletePlaylist(p.ID); err != nil {
		return err
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "deleted", "id": p.ID})
	}
	fmt.Printf("Deleted playlist %q\n", p.Name)
	return nil
}

// pickTrack resolves a 1-based position or a track ID within tracks.
func pickTrack(tracks []core.Track, ref string) (core.Track, error) {
	if i := core.IndexOf(tracks, ref); i >= 0 {
		return tracks[i], nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return core.Track{}, fmt.Errorf("no track %q", ref)
	}
	if n < 1 || n > len(tracks) {
		return core.Track{}, fmt.Errorf("position %d out of range (1-%d)", n, len(tracks))
	}
	return tracks[n-1], nil
}
