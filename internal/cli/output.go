package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/FL1CKfps/Harmony-player/internal/core"
)

// Table provides a simple table formatter.
type Table struct {
	w *tabwriter.Writer
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return NewTableWriter(os.Stdout, headers...)
}

// NewTableWriter creates a table writing to a specific writer.
func NewTableWriter(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	if len(headers) > 0 {
		t.Row(headers...)
	}
	return t
}

// Row adds a row to the table.
func (t *Table) Row(values ...string) {
	_, _ = t.w.Write([]byte(strings.Join(values, "\t") + "\n"))
}

// Flush writes the table output.
func (t *Table) Flush() {
	_ = t.w.Flush()
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// trackJSON is the JSON shape of a track in command output.
type trackJSON struct {
	Position int    `json:"position,omitempty"`
	ID       string `json:"id"`
	Name     string `json:"name"`
	Artists  string `json:"artists"`
	Album    string `json:"album,omitempty"`
	Duration string `json:"duration"`
}

func toTrackJSON(tracks []core.Track) []trackJSON {
	out := make([]trackJSON, len(tracks))
	for i, t := range tracks {
		out[i] = trackJSON{
			Position: i + 1,
			ID:       t.ID,
			Name:     t.Name,
			Artists:  t.PrimaryArtists,
			Album:    t.Album,
			Duration: FormatDuration(int(t.DurationSeconds)),
		}
	}
	return out
}

// printTracks writes tracks as a numbered table, or JSON with --json.
func printTracks(tracks []core.Track, empty string) error {
	if JSONOutput() {
		return printJSON(map[string]any{"tracks": toTrackJSON(tracks)})
	}
	if len(tracks) == 0 {
		fmt.Println(empty)
		return nil
	}

	table := NewTable("#", "TITLE", "ARTIST", "ALBUM", "TIME", "ID")
	for i, t := range tracks {
		table.Row(
			strconv.Itoa(i+1),
			TruncateString(t.Name, 40),
			TruncateString(t.PrimaryArtists, 30),
			TruncateString(t.Album, 25),
			FormatDuration(int(t.DurationSeconds)),
			t.ID,
		)
	}
	table.Flush()
	return nil
}

// StatusIcon returns an icon for the given boolean status.
func StatusIcon(active bool) string {
	if active {
		return "●"
	}
	return "○"
}

// TruncateString truncates a string to maxLen runes, adding "..." if
// truncated.
func TruncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// FormatDuration formats a duration in seconds as mm:ss or hh:mm:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
