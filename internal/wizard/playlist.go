package wizard

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

// PlaylistModel is the bubbletea model for the playlist picker.
type PlaylistModel struct {
	playlists []core.Playlist
	cursor    int
	selected  *core.Playlist
	// highlight marks playlists that already hold this track.
	highlight string
	width     int
	height    int
}

// Styles for playlist picker
var (
	playlistTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205"))

	playlistItemStyle = lipgloss.NewStyle().
				PaddingLeft(2)

	playlistSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(2).
				Background(lipgloss.Color("237"))

	playlistHasStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("82"))

	playlistDimStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243"))
)

// NewPlaylistModel creates a picker over playlists. trackID, when set,
// marks the playlists that already contain it.
func NewPlaylistModel(playlists []core.Playlist, trackID string) PlaylistModel {
	return PlaylistModel{
		playlists: playlists,
		highlight: trackID,
		width:     80,
		height:    20,
	}
}

// Init initializes the model.
func (m PlaylistModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m PlaylistModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit

		case "enter", " ":
			if len(m.playlists) > 0 && m.cursor < len(m.playlists) {
				p := m.playlists[m.cursor]
				m.selected = &p
				return m, tea.Quit
			}

		case "up", "k", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j", "ctrl+n":
			if m.cursor < len(m.playlists)-1 {
				m.cursor++
			}

		case "home", "g":
			m.cursor = 0

		case "end", "G":
			m.cursor = max(len(m.playlists)-1, 0)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

// View renders the model.
func (m PlaylistModel) View() string {
	var b strings.Builder

	b.WriteString(playlistTitleStyle.Render("🎶 Select Playlist"))
	b.WriteString("\n\n")

	if len(m.playlists) == 0 {
		b.WriteString(playlistDimStyle.Render("No playlists yet"))
		b.WriteString("\n\n")
		b.WriteString(playlistDimStyle.Render("Create one with 'harmony playlist create <name>'."))
	} else {
		for i, p := range m.playlists {
			var line strings.Builder

			if m.highlight != "" && p.Contains(m.highlight) {
				line.WriteString(playlistHasStyle.Render("● "))
			} else {
				line.WriteString(playlistDimStyle.Render("○ "))
			}
			line.WriteString(p.Name)
			line.WriteString(" " + playlistDimStyle.Render(fmt.Sprintf("(%d tracks)", len(p.Tracks))))

			if i == m.cursor {
				b.WriteString(playlistSelectedStyle.Render("▸ " + line.String()))
			} else {
				b.WriteString(playlistItemStyle.Render("  " + line.String()))
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(playlistDimStyle.Render("↑/↓ navigate • enter select • esc quit"))
	if m.highlight != "" {
		b.WriteString("\n")
		b.WriteString(playlistDimStyle.Render("● already has this track"))
	}

	return b.String()
}

// Selected returns the selected playlist, or nil if none.
func (m PlaylistModel) Selected() *core.Playlist {
	return m.selected
}

// RunPlaylistPicker runs the playlist picker and returns the selection.
func RunPlaylistPicker(playlists []core.Playlist, trackID string) (*core.Playlist, error) {
	model := NewPlaylistModel(playlists, trackID)
	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}
	return finalModel.(PlaylistModel).Selected(), nil
}
