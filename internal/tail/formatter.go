package tail

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

// Formatter formats events for output.
type Formatter struct {
	showEmoji     bool
	showTimestamp bool
	template      *template.Template
}

// FormatterOption configures a Formatter.
type FormatterOption func(*Formatter)

// WithEmoji enables emoji output.
func WithEmoji(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showEmoji = enabled
	}
}

// WithTimestamp enables timestamp output.
func WithTimestamp(enabled bool) FormatterOption {
	return func(f *Formatter) {
		f.showTimestamp = enabled
	}
}

// WithTemplate sets a custom format template. An unparseable template is
// ignored.
func WithTemplate(tmpl string) FormatterOption {
	return func(f *Formatter) {
		if tmpl != "" {
			t, err := template.New("format").Parse(tmpl)
			if err == nil {
				f.template = t
			}
		}
	}
}

// NewFormatter creates a new formatter with the given options.
func NewFormatter(opts ...FormatterOption) *Formatter {
	f := &Formatter{
		showEmoji: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format formats an event as a string.
func (f *Formatter) Format(e Event) string {
	if f.template != nil {
		return f.formatTemplate(e)
	}
	return f.formatLine(e)
}

// formatLine formats an event as a simple line.
func (f *Formatter) formatLine(e Event) string {
	var parts []string

	// Timestamp
	if f.showTimestamp {
		parts = append(parts, e.Timestamp.Format("15:04:05"))
	}

	// Emoji
	if f.showEmoji {
		parts = append(parts, eventEmoji(e.Type))
	}

	// Event description
	parts = append(parts, f.eventDescription(e))

	return strings.Join(parts, " ")
}

// formatTemplate formats an event using a custom template.
func (f *Formatter) formatTemplate(e Event) string {
	data := templateData{
		Type:      eventTypeName(e.Type),
		Emoji:     eventEmoji(e.Type),
		Timestamp: e.Timestamp,
		Time:      e.Timestamp.Format("15:04:05"),
	}

	subject := e.Current
	if e.Type == EventTrackComplete || e.Type == EventTrackSkip {
		subject = e.Previous
	}
	if subject.HasTrack() {
		data.ID = subject.Track.ID
		data.Title = subject.Track.Name
		data.Artist = subject.Track.PrimaryArtists
		data.Album = subject.Track.Album
	}
	if e.Current != nil {
		data.Context = string(e.Current.Context)
		data.Volume = volumePercent(e.Current.Playback.Volume)
		data.Queued = e.Current.Queued
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		return f.formatLine(e)
	}
	return buf.String()
}

type templateData struct {
	Type      string
	Emoji     string
	Timestamp time.Time
	Time      string
	ID        string
	Title     string
	Artist    string
	Album     string
	Context   string
	Volume    int
	Queued    int
}

// eventDescription returns a human-readable description of the event.
func (f *Formatter) eventDescription(e Event) string {
	switch e.Type {
	case EventTrackChange:
		if e.Current.HasTrack() {
			return fmt.Sprintf("Now playing: %s - %s", e.Current.Track.PrimaryArtists, e.Current.Track.Name)
		}
		return "Track changed"

	case EventTrackComplete:
		if e.Previous.HasTrack() {
			return fmt.Sprintf("Finished: %s - %s", e.Previous.Track.PrimaryArtists, e.Previous.Track.Name)
		}
		return "Track completed"

	case EventTrackSkip:
		if e.Previous.HasTrack() {
			return fmt.Sprintf("Skipped: %s - %s", e.Previous.Track.PrimaryArtists, e.Previous.Track.Name)
		}
		return "Track skipped"

	case EventPause:
		return "Paused"

	case EventResume:
		return "Resumed"

	case EventVolumeChange:
		if e.Current != nil {
			return fmt.Sprintf("Volume: %d%%", volumePercent(e.Current.Playback.Volume))
		}
		return "Volume changed"

	case EventModeChange:
		if e.Current != nil {
			shuffle := "off"
			if e.Current.Shuffled {
				shuffle = "on"
			}
			return fmt.Sprintf("Shuffle %s, repeat %s", shuffle, strings.ToLower(string(e.Current.Repeat)))
		}
		return "Mode changed"

	case EventStop:
		return "Stopped"

	default:
		return "Unknown event"
	}
}

func volumePercent(v float64) int {
	return int(math.Round(v * 100))
}

// eventEmoji returns an emoji for the event type.
func eventEmoji(t EventType) string {
	switch t {
	case EventTrackChange:
		return "🎵"
	case EventTrackComplete:
		return "✅"
	case EventTrackSkip:
		return "⏭️"
	case EventPause:
		return "⏸️"
	case EventResume:
		return "▶️"
	case EventVolumeChange:
		return "🔊"
	case EventModeChange:
		return "🔀"
	case EventStop:
		return "⏹️"
	default:
		return "❓"
	}
}

// String returns the snake_case name used in templates and JSON output.
func (t EventType) String() string {
	return eventTypeName(t)
}

// eventTypeName returns the name of the event type.
func eventTypeName(t EventType) string {
	switch t {
	case EventTrackChange:
		return "track_change"
	case EventTrackComplete:
		return "track_complete"
	case EventTrackSkip:
		return "track_skip"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventVolumeChange:
		return "volume_change"
	case EventModeChange:
		return "mode_change"
	case EventStop:
		return "stop"
	default:
		return "unknown"
	}
}

// FormatRecent renders a recently played entry the way events are rendered.
func (f *Formatter) FormatRecent(r core.RecentTrack) string {
	var parts []string
	if f.showTimestamp {
		parts = append(parts, r.PlayedAt.Local().Format("15:04:05"))
	}
	if f.showEmoji {
		parts = append(parts, "⏪")
	}
	parts = append(parts, fmt.Sprintf("%s - %s", r.PrimaryArtists, r.Name))
	return strings.Join(parts, " ")
}
