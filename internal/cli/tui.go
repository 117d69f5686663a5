package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/FL1CKfps/Harmony-player/internal/notify"
	"github.com/FL1CKfps/Harmony-player/internal/tui"
	"github.com/FL1CKfps/Harmony-player/internal/wizard"
)

var tuiRefresh int

var tuiCmd = &cobra.Command{
	Use:     "ui",
	Aliases: []string{"tui"},
	Short:   "Launch the interactive player",
	Long: `Launch the interactive terminal player.

The player provides a live view with:
  • Now Playing - current track, progress, shuffle and repeat
  • Queue - priority queue, then the rest of the playlist
  • Library - liked songs and playlists
  • History - recently played tracks

Keyboard shortcuts:
  q, Ctrl+C    Quit
  ?            Help
  /            Search
  Space        Play/Pause
  n            Next track
  p            Previous track
  ←/→          Seek 5 seconds
  +/-          Volume up/down
  s            Toggle shuffle
  r            Cycle repeat (off, one, all)
  l            Like the current track
  Tab          Switch panel`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVar(&tuiRefresh, "refresh", 0, "refresh interval in milliseconds (default from config)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !wizard.IsTerminal() {
		return fmt.Errorf("the player needs an interactive terminal")
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	notes := notify.NewChannel(32)
	// Logs stay in the log file; the dashboard owns the terminal.
	rt, err := newRuntime(ctx, runtimeOptions{notes: notes, session: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.store.UserName() == "" {
		if err := promptUserName(rt); err != nil {
			return err
		}
	}

	refresh := cfg.TUI.RefreshInterval
	if tuiRefresh > 0 {
		refresh = tuiRefresh
	}
	return tui.Run(ctx, rt.store, notes.C(), time.Duration(refresh)*time.Millisecond, cfg.TUI.Theme)
}

// promptUserName asks for the name shown in the greeting on first run.
// Skipping leaves it unset and the prompt returns next time.
func promptUserName(rt *runtime) error {
	var name string
	err := huh.NewInput().
		Title("Welcome to Harmony! What should we call you?").
		Placeholder("Your name").
		Value(&name).
		Run()
	if err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return rt.store.SetUserName(name)
}
