package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/tui/styles"
)

// LikedEntryID identifies the Liked Songs row of the library panel.
const LikedEntryID = ""

// Library lists Liked Songs followed by the user's playlists.
type Library struct {
	selected int
}

// NewLibrary creates a new Library component
func NewLibrary() *Library {
	return &Library{}
}

// SelectNext selects the next entry; n is the number of playlists.
func (l *Library) SelectNext(n int) {
	if l.selected < n {
		l.selected++
	}
}

// SelectPrev selects the previous entry.
func (l *Library) SelectPrev() {
	if l.selected > 0 {
		l.selected--
	}
}

// SelectedID returns the playlist ID under the cursor, or LikedEntryID for
// the Liked Songs row.
func (l *Library) SelectedID(playlists []core.Playlist) string {
	if l.selected == 0 || l.selected > len(playlists) {
		return LikedEntryID
	}
	return playlists[l.selected-1].ID
}

// Render renders the library panel. playing is the ID of the playlist
// currently driving playback, if any.
func (l *Library) Render(liked int, playlists []core.Playlist, playing string, width, height int, focused bool) string {
	title := styles.PanelTitle("Library", focused)

	content := l.renderEntries(liked, playlists, playing, width-4, height-4, focused)

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (l *Library) renderEntries(liked int, playlists []core.Playlist, playing string, width, maxLines int, focused bool) string {
	l.selected = max(0, min(l.selected, len(playlists)))

	lines := make([]string, 0, len(playlists)+1)
	lines = append(lines, l.line(0, "♥", "Liked Songs", liked, false, width, focused))

	for i, p := range playlists {
		if len(lines) >= maxLines {
			break
		}
		lines = append(lines, l.line(i+1, "🎶", p.Name, len(p.Tracks), p.ID == playing, width, focused))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (l *Library) line(i int, icon, name string, count int, active bool, width int, focused bool) string {
	selector := "  "
	if focused && i == l.selected {
		selector = "▸ "
	}

	name = truncate(name, width-12)
	if focused && i == l.selected {
		name = styles.Highlight.Render(name)
	}

	mark := ""
	if active {
		mark = styles.Playing.Render(" ●")
	}

	return fmt.Sprintf("%s%s %s %s%s", selector, icon, name, styles.Dim.Render(fmt.Sprintf("(%d)", count)), mark)
}
