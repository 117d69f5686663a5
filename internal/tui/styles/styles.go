package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

// Colors adapt to the terminal background unless a theme forces one.
var (
	Primary   = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#7C3AED"} // Purple
	Secondary = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"} // Green
	Accent    = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"} // Amber

	Success = Secondary
	Warning = Accent
	Error   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}
	Info    = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#3B82F6"}

	Border    = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}
	Text      = lipgloss.AdaptiveColor{Light: "#111827", Dark: "#F9FAFB"}
	TextMuted = lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#9CA3AF"}
	TextDim   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}

	Brand = lipgloss.AdaptiveColor{Light: "#DB2777", Dark: "#EC4899"}
)

// Text styles
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Text)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextMuted)

	Label = lipgloss.NewStyle().
		Foreground(TextDim)

	Highlight = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Dim = lipgloss.NewStyle().
		Foreground(TextDim)

	Playing = lipgloss.NewStyle().
		Foreground(Brand)

	Paused = lipgloss.NewStyle().
		Foreground(Warning)

	Selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success)
)

// Border styles
var (
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Border)

	FocusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)
)

// ApplyTheme forces light or dark colors. "auto" leaves detection to the
// terminal.
func ApplyTheme(theme string) {
	switch theme {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// Panel returns the frame style for a panel.
func Panel(focused bool) lipgloss.Style {
	if focused {
		return FocusedBorder.Padding(0, 1)
	}
	return BorderStyle.Padding(0, 1)
}

// PanelTitle creates a styled panel title
func PanelTitle(title string, focused bool) string {
	style := Label
	if focused {
		style = Highlight
	}
	return style.Render(" " + title + " ")
}

// ProgressBar creates a progress bar string
func ProgressBar(percent float64, width int) string {
	filled := int(percent / 100 * float64(width))
	filled = max(0, min(filled, width))

	filledStyle := lipgloss.NewStyle().Foreground(Primary)
	emptyStyle := lipgloss.NewStyle().Foreground(Border)

	return filledStyle.Render(strings.Repeat("━", filled)) +
		emptyStyle.Render(strings.Repeat("─", width-filled))
}

// StatusIcon returns an icon for playback status.
func StatusIcon(status core.Status) string {
	switch status {
	case core.StatusPlaying:
		return Playing.Render("▶")
	case core.StatusPaused:
		return Paused.Render("⏸")
	case core.StatusLoading:
		return Dim.Render("…")
	default:
		return Dim.Render("■")
	}
}

// ContextIcon returns an icon for what the queue is playing from.
func ContextIcon(t core.ContextType) string {
	switch t {
	case core.ContextPlaylist:
		return "🎶"
	case core.ContextLiked:
		return "♥"
	case core.ContextRadio:
		return "📻"
	default:
		return "🎧"
	}
}

// RepeatLabel renders a repeat mode for the status line.
func RepeatLabel(mode core.RepeatMode) string {
	switch mode {
	case core.RepeatOne:
		return Highlight.Render("🔂 one")
	case core.RepeatAll:
		return Highlight.Render("🔁 all")
	default:
		return Dim.Render("🔁 off")
	}
}

// Toggle renders a labelled on/off flag.
func Toggle(label string, on bool) string {
	if on {
		return Highlight.Render(label)
	}
	return Dim.Render(label)
}
