// Package wizard holds the interactive pickers the CLI falls back to when
// an argument is missing and a terminal is attached.
package wizard

import (
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

// Interactive provides interactive fallback functionality.
type Interactive struct {
	enabled    bool
	searchFunc SearchFunc
	playlists  []core.Playlist
}

// NewInteractive creates a new interactive handler.
func NewInteractive() *Interactive {
	return &Interactive{
		enabled: true,
	}
}

// SetEnabled enables or disables interactive mode.
func (i *Interactive) SetEnabled(enabled bool) {
	i.enabled = enabled
}

// SetSearchFunc sets the search function for the search wizard.
func (i *Interactive) SetSearchFunc(fn SearchFunc) {
	i.searchFunc = fn
}

// SetPlaylists sets the playlists offered by the playlist picker.
func (i *Interactive) SetPlaylists(playlists []core.Playlist) {
	i.playlists = playlists
}

// IsTerminal returns true if stdout is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// CanInteract returns true if interactive mode is available.
func (i *Interactive) CanInteract() bool {
	return i.enabled && IsTerminal()
}

// PromptSearch launches the search wizard if interactive mode is available.
// Returns the selected track, or nil if cancelled or not interactive.
func (i *Interactive) PromptSearch() (*core.Track, error) {
	if !i.CanInteract() || i.searchFunc == nil {
		return nil, nil
	}
	return RunSearch(i.searchFunc)
}

// PromptPlaylist launches the playlist picker if interactive mode is
// available. Returns the selected playlist, or nil if cancelled or not
// interactive.
func (i *Interactive) PromptPlaylist(trackID string) (*core.Playlist, error) {
	if !i.CanInteract() || len(i.playlists) == 0 {
		return nil, nil
	}
	return RunPlaylistPicker(i.playlists, trackID)
}

// NeedsQuery returns true if a search argument is required but missing.
func NeedsQuery(args []string) bool {
	return len(args) == 0
}

// FindPlaylist returns the playlist whose ID or name matches ref. Names
// match case-insensitively; an exact ID wins.
func FindPlaylist(playlists []core.Playlist, ref string) *core.Playlist {
	for i := range playlists {
		if playlists[i].ID == ref {
			return &playlists[i]
		}
	}
	var match *core.Playlist
	count := 0
	for i := range playlists {
		if strings.EqualFold(strings.TrimSpace(playlists[i].Name), strings.TrimSpace(ref)) {
			match = &playlists[i]
			count++
		}
	}
	if count == 1 {
		return match
	}
	return nil
}
