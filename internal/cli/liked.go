package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var likedCmd = &cobra.Command{
	Use:     "liked",
	Aliases: []string{"likes"},
	Short:   "Manage liked songs",
	Long: `List, add and remove liked songs.

Examples:
  harmony liked
  harmony liked add "kesariya"
  harmony liked remove 3`,
	RunE: runLikedList,
}

var likedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List liked songs",
	RunE:  runLikedList,
}

var likedAddCmd = &cobra.Command{
	Use:   "add <query>",
	Short: "Like the best match for a search",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLikedAdd,
}

var likedRemoveCmd = &cobra.Command{
	Use:   "remove <position|track-id>",
	Short: "Unlike a song",
	Args:  cobra.ExactArgs(1),
	RunE:  runLikedRemove,
}

func init() {
	likedCmd.AddCommand(likedListCmd)
	likedCmd.AddCommand(likedAddCmd)
	likedCmd.AddCommand(likedRemoveCmd)
	rootCmd.AddCommand(likedCmd)
}

func runLikedList(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	return printTracks(rt.store.LikedSongs(), "No liked songs yet. Like one with 'harmony liked add <query>'.")
}

func runLikedAdd(cmd *cobra.Command, args []string) error {
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

	already := rt.store.IsLiked(track.ID)
	if !already {
		rt.store.ToggleLike(track)
	}

	if JSONOutput() {
		return printJSON(map[string]any{"status": "liked", "track": track.ID, "already_liked": already})
	}
	if already {
		fmt.Printf("%s by %s is already liked\n", track.Name, track.PrimaryArtists)
		return nil
	}
	fmt.Printf("♥ Liked %s by %s\n", track.Name, track.PrimaryArtists)
	return nil
}

func runLikedRemove(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	track, err := pickTrack(rt.store.LikedSongs(), args[0])
	if err != nil {
		return err
	}
	rt.store.ToggleLike(track)

	if JSONOutput() {
		return printJSON(map[string]string{"status": "unliked", "track": track.ID})
	}
	fmt.Printf("Removed %s from liked songs\n", track.Name)
	return nil
}
