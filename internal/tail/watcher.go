// Package tail turns store snapshots into a stream of playback events for
// headless output.
package tail

import (
	"context"
	"time"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/store"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventVolumeChange
	EventModeChange
	EventStop
)

// Snapshot is the part of the store state the watcher compares.
type Snapshot struct {
	Track    *core.Track
	Status   core.Status
	Playback core.PlaybackState
	Context  core.ContextType
	Shuffled bool
	Repeat   core.RepeatMode
	Queued   int
}

// SnapshotOf extracts a Snapshot from st.
func SnapshotOf(st store.State) *Snapshot {
	s := &Snapshot{
		Track:    st.CurrentTrack,
		Status:   st.Status,
		Playback: st.Playback,
		Shuffled: st.Shuffled,
		Repeat:   st.Repeat,
		Queued:   len(st.PriorityQueue) + len(st.Queue),
	}
	if st.Context != nil {
		s.Context = st.Context.Type
	}
	return s
}

// HasTrack returns true if a track is loaded.
func (s *Snapshot) HasTrack() bool {
	return s != nil && s.Track != nil
}

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *Snapshot
	Current   *Snapshot
}

// Source yields state snapshots. *store.Store satisfies it.
type Source interface {
	State() store.State
}

// Watcher polls a source for state changes and emits events.
type Watcher struct {
	source   Source
	interval time.Duration
	events   chan Event
	done     chan struct{}
	now      func() time.Time
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Source, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
		now:      time.Now,
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	var prev *Snapshot

	for {
		curr := SnapshotOf(w.source.State())
		for _, e := range diffStates(prev, curr, w.now()) {
			select {
			case w.events <- e:
			default:
				// Drop event if channel is full
			}
		}
		prev = curr

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffStates compares two snapshots and returns detected events.
func diffStates(prev, curr *Snapshot, now time.Time) []Event {
	if curr == nil {
		return nil
	}

	event := func(t EventType) Event {
		return Event{Type: t, Timestamp: now, Previous: prev, Current: curr}
	}

	// First poll - no previous state
	if prev == nil {
		if curr.HasTrack() && curr.Status != core.StatusIdle {
			return []Event{event(EventTrackChange)}
		}
		return nil
	}

	var events []Event

	if trackChanged(prev, curr) {
		// The outgoing track gets its own line before the new one.
		if prev.HasTrack() {
			if wasCompleted(prev) {
				events = append(events, event(EventTrackComplete))
			} else {
				events = append(events, event(EventTrackSkip))
			}
		}
		if curr.HasTrack() {
			events = append(events, event(EventTrackChange))
		}
	} else if curr.HasTrack() && restarted(prev, curr) {
		events = append(events, event(EventTrackChange))
	}

	switch {
	case curr.Status == core.StatusIdle && prev.Status != core.StatusIdle:
		events = append(events, event(EventStop))
	case prev.Status == core.StatusPlaying && curr.Status == core.StatusPaused:
		events = append(events, event(EventPause))
	case prev.Status == core.StatusPaused && curr.Status == core.StatusPlaying:
		events = append(events, event(EventResume))
	}

	if prev.Playback.Volume != curr.Playback.Volume {
		events = append(events, event(EventVolumeChange))
	}

	if prev.Shuffled != curr.Shuffled || prev.Repeat != curr.Repeat {
		events = append(events, event(EventModeChange))
	}

	return events
}

// trackChanged returns true if the track changed.
func trackChanged(prev, curr *Snapshot) bool {
	if prev.Track == nil && curr.Track == nil {
		return false
	}
	if prev.Track == nil || curr.Track == nil {
		return true
	}
	return prev.Track.ID != curr.Track.ID
}

// restarted reports a replay of the same track, as repeat-one does.
func restarted(prev, curr *Snapshot) bool {
	return curr.Status == core.StatusLoading &&
		(prev.Status == core.StatusEnded || prev.Status == core.StatusIdle ||
			curr.Playback.CurrentTime < prev.Playback.CurrentTime)
}

// wasCompleted returns true if the track likely completed naturally.
func wasCompleted(s *Snapshot) bool {
	if s.Status == core.StatusEnded {
		return true
	}
	d := s.Playback.Duration
	if d <= 0 {
		return false
	}
	// Polling can miss the final second or two.
	return s.Playback.CurrentTime >= d*0.95
}
