package cli

import (
	"testing"
	"time"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/tail"
)

func TestParseRepeat(t *testing.T) {
	tests := []struct {
		in   string
		want core.RepeatMode
	}{
		{"one", core.RepeatOne},
		{"ONE", core.RepeatOne},
		{"all", core.RepeatAll},
		{"off", core.RepeatOff},
		{"", core.RepeatOff},
		{"context", core.RepeatOff},
	}
	for _, tt := range tests {
		if got := parseRepeat(tt.in); got != tt.want {
			t.Errorf("parseRepeat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilterTracks(t *testing.T) {
	tracks := []core.Track{
		{ID: "1", Name: "Kesariya", PrimaryArtists: "Arijit Singh", Album: "Brahmastra"},
		{ID: "2", Name: "Tum Hi Ho", PrimaryArtists: "Arijit Singh", Album: "Aashiqui 2"},
		{ID: "3", Name: "Raataan Lambiyan", PrimaryArtists: "Jubin Nautiyal", Album: "Shershaah"},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"1", "2", "3"}},
		{"   ", []string{"1", "2", "3"}},
		{"arijit", []string{"1", "2"}},
		{"shershaah", []string{"3"}},
		{"TUM HI", []string{"2"}},
		{"nothing like this", nil},
	}
	for _, tt := range tests {
		got := filterTracks(tracks, tt.query)
		var ids []string
		for _, tr := range got {
			ids = append(ids, tr.ID)
		}
		if len(ids) != len(tt.want) {
			t.Errorf("filterTracks(%q) = %v, want %v", tt.query, ids, tt.want)
			continue
		}
		for i := range ids {
			if ids[i] != tt.want[i] {
				t.Errorf("filterTracks(%q) = %v, want %v", tt.query, ids, tt.want)
				break
			}
		}
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []core.Track{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}}

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"b", "b", false},
		{"1", "a", false},
		{"3", "c", false},
		{"0", "", true},
		{"4", "", true},
		{"zzz", "", true},
	}
	for _, tt := range tests {
		got, err := pickTrack(tracks, tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("pickTrack(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if got.ID != tt.want {
			t.Errorf("pickTrack(%q) = %q, want %q", tt.ref, got.ID, tt.want)
		}
	}
}

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
		{"दिल से रे", 6, "दिल..."},
	}
	for _, tt := range tests {
		if got := TruncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{-5, "0:00"},
		{59, "0:59"},
		{245, "4:05"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := timeAgo(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("timeAgo(-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestToEventJSON(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	prev := &tail.Snapshot{
		Track:  &core.Track{ID: "old", Name: "Old Song", PrimaryArtists: "Someone"},
		Status: core.StatusPlaying,
		Repeat: core.RepeatOff,
	}
	cur := &tail.Snapshot{
		Track:    &core.Track{ID: "new", Name: "New Song", PrimaryArtists: "Another"},
		Status:   core.StatusPlaying,
		Playback: core.PlaybackState{Volume: 0.5},
		Repeat:   core.RepeatAll,
		Shuffled: true,
	}

	got := toEventJSON(tail.Event{Type: tail.EventTrackChange, Timestamp: ts, Previous: prev, Current: cur})
	if got.Type != "track_change" {
		t.Errorf("Type = %q, want %q", got.Type, "track_change")
	}
	if got.TrackID != "new" {
		t.Errorf("TrackID = %q, want %q", got.TrackID, "new")
	}
	if got.Timestamp != "2024-05-01T12:00:00Z" {
		t.Errorf("Timestamp = %q, want %q", got.Timestamp, "2024-05-01T12:00:00Z")
	}
	if got.Volume != 0.5 || got.Repeat != "ALL" || !got.Shuffled {
		t.Errorf("modes = %v/%q/%v, want 0.5/ALL/true", got.Volume, got.Repeat, got.Shuffled)
	}

	// Completion and skip events describe the track that just finished.
	got = toEventJSON(tail.Event{Type: tail.EventTrackComplete, Timestamp: ts, Previous: prev, Current: cur})
	if got.TrackID != "old" {
		t.Errorf("complete TrackID = %q, want %q", got.TrackID, "old")
	}

	got = toEventJSON(tail.Event{Type: tail.EventStop, Timestamp: ts})
	if got.TrackID != "" || got.Status != "" {
		t.Errorf("empty event = %+v, want no track", got)
	}
}

func TestTypedConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		want    any
		wantErr bool
	}{
		{"playback.volume", "60", 60, false},
		{"playback.volume", "loud", nil, true},
		{"playback.shuffle", "true", true, false},
		{"notify.desktop", "off", false, false},
		{"notify.desktop", "maybe", nil, true},
		{"youtube.region", "IN", "IN", false},
		{"defaults.device", "x", nil, true},
	}
	for _, tt := range tests {
		got, err := typedConfigValue(tt.key, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("typedConfigValue(%q, %q) error = %v, wantErr %v", tt.key, tt.value, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("typedConfigValue(%q, %q) = %v, want %v", tt.key, tt.value, got, tt.want)
		}
	}
}

func TestUnknownConfigKeySuggests(t *testing.T) {
	_, err := typedConfigValue("spotify.client_id", "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if herrors.GetSuggestion(err) == "" {
		t.Errorf("GetSuggestion() = %q, want a suggestion", herrors.GetSuggestion(err))
	}
}
