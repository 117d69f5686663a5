package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var lyricsCmd = &cobra.Command{
	Use:   "lyrics <query>",
	Short: "Print the lyrics of a song",
	Long: `Search for a song and print its lyrics, when the catalogue has them.

Examples:
  harmony lyrics "tum hi ho"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLyrics,
}

func init() {
	rootCmd.AddCommand(lyricsCmd)
}

func runLyrics(cmd *cobra.Command, args []string) error {
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

	text, err := rt.songs.Lyrics(ctx, track.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch lyrics: %w", err)
	}
	text = strings.TrimSpace(text)

	if JSONOutput() {
		return printJSON(map[string]string{"track": track.ID, "name": track.Name, "lyrics": text})
	}
	if text == "" {
		fmt.Printf("No lyrics available for %s\n", track.Name)
		return nil
	}
	fmt.Printf("%s by %s\n\n%s\n", track.Name, track.PrimaryArtists, text)
	return nil
}
