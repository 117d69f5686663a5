package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/tui/styles"
)

// Playing is what the now-playing panel shows.
type Playing struct {
	Track    *core.Track
	Status   core.Status
	Playback core.PlaybackState
	Context  *core.QueueContext
	Source   string // playlist name, when playing one
	Shuffled bool
	Repeat   core.RepeatMode
	Liked    bool
}

// NowPlaying displays the currently playing track
type NowPlaying struct{}

// NewNowPlaying creates a new NowPlaying component
func NewNowPlaying() *NowPlaying {
	return &NowPlaying{}
}

// Render renders the now playing panel
func (n *NowPlaying) Render(p Playing, width, height int, focused bool) string {
	title := styles.PanelTitle("Now Playing", focused)

	var content string
	if p.Track == nil {
		content = styles.Muted.Render("Nothing playing. Press / to search.")
	} else {
		content = n.renderTrack(p, width-4)
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

func (n *NowPlaying) renderTrack(p Playing, width int) string {
	track := p.Track

	icon := styles.StatusIcon(p.Status)
	title := styles.Title.Width(max(width-4, 1)).Render(truncate(track.Name, width-4))

	heart := ""
	if p.Liked {
		heart = " " + styles.Playing.Render("♥")
	}
	artist := styles.Subtitle.Render(track.PrimaryArtists) + heart
	album := styles.Dim.Render(track.Album)

	// Account for times on either side
	progressWidth := max(width-14, 10)
	total := p.Playback.Duration
	if total <= 0 {
		total = track.DurationSeconds
	}
	pb := core.PlaybackState{CurrentTime: p.Playback.CurrentTime, Duration: total}
	progress := fmt.Sprintf("%s %s %s",
		formatSeconds(p.Playback.CurrentTime),
		styles.ProgressBar(pb.ProgressPercent(), progressWidth),
		formatSeconds(total))

	return lipgloss.JoinVertical(lipgloss.Left,
		icon+" "+title,
		"  "+artist,
		"  "+album,
		"",
		progress,
		"",
		n.renderSource(p),
		n.renderModes(p),
	)
}

func (n *NowPlaying) renderSource(p Playing) string {
	if p.Context == nil {
		return ""
	}
	label := "Standalone"
	switch p.Context.Type {
	case core.ContextPlaylist:
		label = "Playlist"
		if p.Source != "" {
			label += ": " + p.Source
		}
	case core.ContextLiked:
		label = "Liked Songs"
	case core.ContextRadio:
		label = "Radio"
	}
	return styles.Muted.Render(styles.ContextIcon(p.Context.Type) + " " + label)
}

func (n *NowPlaying) renderModes(p Playing) string {
	volume := fmt.Sprintf("🔊 %d%%", int(p.Playback.Volume*100+0.5))
	return lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Toggle("🔀 shuffle", p.Shuffled), "  ",
		styles.RepeatLabel(p.Repeat), "  ",
		styles.Muted.Render(volume),
	)
}

func formatSeconds(s float64) string {
	return formatDuration(time.Duration(s * float64(time.Second)))
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	m := d / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%d:%02d", m, s)
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
