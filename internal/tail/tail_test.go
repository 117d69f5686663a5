package tail

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/store"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func snap(id string, status core.Status, at, duration float64) *Snapshot {
	s := &Snapshot{
		Status:   status,
		Playback: core.PlaybackState{CurrentTime: at, Duration: duration, Volume: 0.7},
		Repeat:   core.RepeatOff,
	}
	if id != "" {
		s.Track = &core.Track{ID: id, Name: "Song " + id, PrimaryArtists: "Artist " + id}
	}
	return s
}

func types(events []Event) []EventType {
	out := make([]EventType, len(events))
	for i, e := range events {
		out[i] = e.Type
	}
	return out
}

func TestDiffStates(t *testing.T) {
	tests := []struct {
		name string
		prev *Snapshot
		curr *Snapshot
		want []EventType
	}{
		{
			name: "first poll with a track",
			curr: snap("a", core.StatusPlaying, 10, 200),
			want: []EventType{EventTrackChange},
		},
		{
			name: "first poll idle",
			curr: snap("a", core.StatusIdle, 0, 200),
		},
		{
			name: "natural end",
			prev: snap("a", core.StatusPlaying, 199, 200),
			curr: snap("b", core.StatusLoading, 0, 0),
			want: []EventType{EventTrackComplete, EventTrackChange},
		},
		{
			name: "skip",
			prev: snap("a", core.StatusPlaying, 20, 200),
			curr: snap("b", core.StatusLoading, 0, 0),
			want: []EventType{EventTrackSkip, EventTrackChange},
		},
		{
			name: "pause",
			prev: snap("a", core.StatusPlaying, 20, 200),
			curr: snap("a", core.StatusPaused, 20, 200),
			want: []EventType{EventPause},
		},
		{
			name: "resume",
			prev: snap("a", core.StatusPaused, 20, 200),
			curr: snap("a", core.StatusPlaying, 21, 200),
			want: []EventType{EventResume},
		},
		{
			name: "queue exhausted",
			prev: snap("a", core.StatusPlaying, 20, 200),
			curr: snap("a", core.StatusIdle, 20, 200),
			want: []EventType{EventStop},
		},
		{
			name: "repeat once",
			prev: snap("a", core.StatusPlaying, 150, 200),
			curr: snap("a", core.StatusLoading, 0, 0),
			want: []EventType{EventTrackChange},
		},
		{
			name: "no change",
			prev: snap("a", core.StatusPlaying, 20, 200),
			curr: snap("a", core.StatusPlaying, 21, 200),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := types(diffStates(tt.prev, tt.curr, now))
			if len(got) != len(tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("events[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDiffStatesVolumeAndMode(t *testing.T) {
	prev := snap("a", core.StatusPlaying, 20, 200)
	curr := snap("a", core.StatusPlaying, 21, 200)
	curr.Playback.Volume = 0.5
	curr.Repeat = core.RepeatAll

	got := types(diffStates(prev, curr, now))
	if len(got) != 2 || got[0] != EventVolumeChange || got[1] != EventModeChange {
		t.Errorf("events = %v, want [volume mode]", got)
	}
}

func TestFormatter(t *testing.T) {
	prev := snap("a", core.StatusPlaying, 20, 200)
	curr := snap("b", core.StatusLoading, 0, 0)

	tests := []struct {
		name  string
		f     *Formatter
		event Event
		want  string
	}{
		{
			name:  "plain",
			f:     NewFormatter(WithEmoji(false)),
			event: Event{Type: EventTrackChange, Timestamp: now, Previous: prev, Current: curr},
			want:  "Now playing: Artist b - Song b",
		},
		{
			name:  "emoji and timestamp",
			f:     NewFormatter(WithTimestamp(true)),
			event: Event{Type: EventTrackSkip, Timestamp: now, Previous: prev, Current: curr},
			want:  "12:00:00 ⏭️ Skipped: Artist a - Song a",
		},
		{
			name:  "volume",
			f:     NewFormatter(WithEmoji(false)),
			event: Event{Type: EventVolumeChange, Timestamp: now, Current: curr},
			want:  "Volume: 70%",
		},
		{
			name:  "template",
			f:     NewFormatter(WithTemplate("{{.Type}} {{.Title}} ({{.Volume}})")),
			event: Event{Type: EventTrackComplete, Timestamp: now, Previous: prev, Current: curr},
			want:  "track_complete Song a (70)",
		},
		{
			name:  "broken template ignored",
			f:     NewFormatter(WithEmoji(false), WithTemplate("{{.Nope")),
			event: Event{Type: EventPause, Timestamp: now, Current: curr},
			want:  "Paused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Format(tt.event); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeSource struct {
	mu sync.Mutex
	st store.State
}

func (f *fakeSource) State() store.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

func (f *fakeSource) set(st store.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.st = st
}

func TestWatcherEmitsChanges(t *testing.T) {
	a := core.Track{ID: "a", Name: "Song a"}
	b := core.Track{ID: "b", Name: "Song b"}
	src := &fakeSource{st: store.State{CurrentTrack: &a, Status: core.StatusPlaying}}

	w := NewWatcher(src, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Start(ctx) }()

	first := <-w.Events()
	if first.Type != EventTrackChange || first.Current.Track.ID != "a" {
		t.Fatalf("first event = %+v", first)
	}

	src.set(store.State{CurrentTrack: &b, Status: core.StatusLoading})

	var seen []string
	timeout := time.After(2 * time.Second)
	for len(seen) < 2 {
		select {
		case e := <-w.Events():
			seen = append(seen, eventTypeName(e.Type))
		case <-timeout:
			t.Fatalf("timed out, saw %v", seen)
		}
	}
	if got := strings.Join(seen, ","); got != "track_skip,track_change" {
		t.Errorf("events = %s, want track_skip,track_change", got)
	}

	w.Stop()
	for range w.Events() {
	}
}
