package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/audio"
	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/tui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show library and source status",
	Long: `Shows a summary of your library, the last song you played and which
music sources and integrations are enabled.`,
	RunE: runStatus,
}

var nameCmd = &cobra.Command{
	Use:   "name [new name]",
	Short: "Show or change your name",
	Long: `Show the name Harmony greets you with, or change it.

Examples:
  harmony name
  harmony name Asha`,
	RunE: runName,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(nameCmd)
}

// statusReport is everything the status command shows.
type statusReport struct {
	User       string            `json:"user,omitempty"`
	Playlists  int               `json:"playlists"`
	Liked      int               `json:"liked"`
	Recent     int               `json:"recent"`
	LastPlayed *core.RecentTrack `json:"last_played,omitempty"`
	Sources    []sourceStatus    `json:"sources"`
	Storage    string            `json:"storage"`
	Path       string            `json:"path,omitempty"`
	Audio      bool              `json:"audio"`
}

type sourceStatus struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Detail  string `json:"detail,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	report := statusReport{
		User:      rt.store.UserName(),
		Playlists: len(rt.store.Playlists()),
		Liked:     len(rt.store.LikedSongs()),
		Storage:   cfg.Storage.Backend,
		Path:      cfg.Storage.Path,
		Audio:     audio.Available,
	}
	recent := rt.store.RecentlyPlayed()
	report.Recent = len(recent)
	if len(recent) > 0 {
		report.LastPlayed = &recent[0]
	}
	report.Sources = []sourceStatus{
		{Name: "Song search", Enabled: true, Detail: cfg.Saavn.BaseURL},
		{Name: "YouTube trending", Enabled: cfg.YouTube.APIKey != "", Detail: cfg.YouTube.Region},
		{Name: "Last.fm similar", Enabled: cfg.LastFM.APIKey != ""},
		{Name: "Desktop notifications", Enabled: cfg.Notify.Desktop},
		{Name: "Metrics", Enabled: cfg.Metrics.Listen != "", Detail: cfg.Metrics.Listen},
	}

	if JSONOutput() {
		return printJSON(report)
	}
	return outputStatus(report, time.Now())
}

func outputStatus(r statusReport, now time.Time) error {
	fmt.Println("[LIBRARY]")
	if r.User != "" {
		fmt.Printf("  %s, %s\n", tui.Greeting(now), r.User)
	}
	fmt.Printf("  %d playlists, %d liked songs, %d recently played\n", r.Playlists, r.Liked, r.Recent)
	if r.LastPlayed != nil {
		fmt.Printf("  Last played: %s by %s (%s)\n",
			r.LastPlayed.Name, r.LastPlayed.PrimaryArtists, timeAgo(r.LastPlayed.PlayedAt, now))
	}

	fmt.Println()
	fmt.Println("[SOURCES]")
	for _, s := range r.Sources {
		line := fmt.Sprintf("  %s %s", StatusIcon(s.Enabled), s.Name)
		if s.Enabled && s.Detail != "" {
			line += fmt.Sprintf(" (%s)", s.Detail)
		}
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println("[SYSTEM]")
	storage := r.Storage
	if r.Path != "" {
		storage += " at " + r.Path
	}
	fmt.Printf("  Storage: %s\n", storage)
	fmt.Printf("  %s Audio output\n", StatusIcon(r.Audio))
	if !r.Audio {
		fmt.Println("    This build has no audio support; rebuild with CGO_ENABLED=1")
	}
	return nil
}

func runName(cmd *cobra.Command, args []string) error {
	rt, err := libraryRuntime(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.Close()

	if len(args) == 0 {
		name := rt.store.UserName()
		if JSONOutput() {
			return printJSON(map[string]string{"name": name})
		}
		if name == "" {
			fmt.Println("No name set. Set one with 'harmony name <name>'.")
			return nil
		}
		fmt.Println(name)
		return nil
	}

	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if err := rt.store.SetUserName(name); err != nil {
		return fmt.Errorf("failed to save name: %w", err)
	}

	if JSONOutput() {
		return printJSON(map[string]string{"status": "saved", "name": name})
	}
	fmt.Printf("Hi, %s!\n", name)
	return nil
}
