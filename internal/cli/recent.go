package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var recentLimit int

var recentCmd = &cobra.Command{
	Use:     "recent",
	Aliases: []string{"history"},
	Short:   "Show recently played songs",
	RunE:    runRecent,
}

var recentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the recently played list",
	Args:  cobra.NoArgs,
	RunE:  runRecentClear,
}

func init() {
	recentCmd.Flags().IntVarP(&recentLimit, "limit", "l", 20, "maximum songs to show")
	recentCmd.AddCommand(recentClearCmd)
	rootCmd.AddCommand(recentCmd)
}

func runRecent(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	recent := rt.store.RecentlyPlayed()
	if recentLimit > 0 && len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}

	if JSONOutput() {
		type entry struct {
			trackJSON
			PlayedAt time.Time `json:"played_at"`
		}
		out := make([]entry, len(recent))
		for i, r := range recent {
			out[i] = entry{
				trackJSON: trackJSON{
					Position: i + 1,
					ID:       r.ID,
					Name:     r.Name,
					Artists:  r.PrimaryArtists,
					Album:    r.Album,
					Duration: FormatDuration(int(r.DurationSeconds)),
				},
				PlayedAt: r.PlayedAt,
			}
		}
		return printJSON(map[string]any{"recent": out})
	}

	if len(recent) == 0 {
		fmt.Println("Nothing played yet")
		return nil
	}

	now := time.Now()
	table := NewTable("#", "TITLE", "ARTIST", "PLAYED")
	for i, r := range recent {
		table.Row(
			strconv.Itoa(i+1),
			TruncateString(r.Name, 40),
			TruncateString(r.PrimaryArtists, 30),
			timeAgo(r.PlayedAt, now),
		)
	}
	table.Flush()
	return nil
}

func runRecentClear(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.store.ClearRecentlyPlayed()

	if JSONOutput() {
		return printJSON(map[string]string{"status": "cleared"})
	}
	fmt.Println("Cleared recently played")
	return nil
}

// timeAgo renders how long before now t was, in the coarsest whole unit.
func timeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
