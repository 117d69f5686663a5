package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/tui/styles"
)

// History displays recently played tracks
type History struct {
	now func() time.Time
}

// NewHistory creates a new History component
func NewHistory() *History {
	return &History{now: time.Now}
}

// Render renders the history panel
func (h *History) Render(entries []core.RecentTrack, width, height int, focused bool) string {
	title := styles.PanelTitle("Recently Played", focused)

	var content string
	if len(entries) == 0 {
		content = styles.Muted.Render("No history yet")
	} else {
		content = h.renderHistory(entries, width-4, height-4)
	}

	panel := styles.Panel(focused).
		Width(width).
		Height(height)

	return panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		content,
	))
}

func (h *History) renderHistory(entries []core.RecentTrack, width, maxLines int) string {
	lines := make([]string, 0, maxLines)

	// icon (2) + " — " (3) + padding for time
	const overhead = 14

	for i, entry := range entries {
		if i >= maxLines {
			break
		}

		// Time ago (right-aligned)
		timeAgo := formatTimeAgo(entry.PlayedAt, h.now())
		timeWidth := len(timeAgo)

		// Status icon
		icon := "✓"

		title, artist := fit(entry.Name, entry.PrimaryArtists, width-overhead-timeWidth, 8)

		// Build track info
		trackInfo := fmt.Sprintf("%s — %s", title, artist)
		trackInfoLen := len([]rune(title)) + 3 + len([]rune(artist)) // " — " is 3 runes

		padding := max(width-2-trackInfoLen-timeWidth, 1)

		line := fmt.Sprintf("%s %s%s%s",
			styles.Dim.Render(icon),
			trackInfo,
			lipgloss.NewStyle().Width(padding).Render(""),
			styles.Dim.Render(timeAgo))

		lines = append(lines, line)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func formatTimeAgo(t, now time.Time) string {
	d := now.Sub(t)

	if d < time.Minute {
		return "now"
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return t.Format("Jan 2")
}
