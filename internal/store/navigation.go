package store

import (
	"context"
	"slices"

	"github.com/samber/lo"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
)

// restartThreshold is how far into a track Previous restarts it instead of
// going back.
const restartThreshold = 3.0

// Next skips to the next track.
func (s *Store) Next(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advanceLocked(ctx)
}

func (s *Store) currentContextLocked() core.QueueContext {
	if s.st.Context == nil {
		return core.QueueContext{Type: core.ContextStandalone}
	}
	return *s.st.Context
}

// advanceLocked moves forward: repeat-one, then the priority queue, then
// the queue, then whatever the context does at exhaustion.
func (s *Store) advanceLocked(ctx context.Context) error {
	cur := s.st.CurrentTrack
	qc := s.currentContextLocked()

	if s.st.Repeat == core.RepeatOne && cur != nil {
		s.st.Repeat = core.RepeatOff
		return s.startLocked(ctx, *cur, qc, s.keepLocked(), false)
	}

	if len(s.st.PriorityQueue) > 0 {
		next := s.st.PriorityQueue[0]
		plan := s.keepLocked()
		plan.Priority = slices.Clone(s.st.PriorityQueue[1:])
		if cur != nil {
			plan.Queue = without(plan.Queue, cur.ID)
		}
		return s.startLocked(ctx, next, qc, plan, true)
	}

	if len(s.st.Queue) > 0 {
		next := s.st.Queue[0]
		plan := s.keepLocked()
		plan.Queue = slices.Clone(s.st.Queue[1:])
		if cur != nil {
			plan.Priority = without(plan.Priority, cur.ID)
		}
		return s.startLocked(ctx, next, qc, plan, true)
	}

	switch {
	case s.st.Repeat == core.RepeatAll && qc.Type == core.ContextPlaylist:
		if i := slices.IndexFunc(s.st.Playlists, func(p core.Playlist) bool { return p.ID == qc.SourceID }); i >= 0 {
			return s.playTracksLocked(ctx, s.st.Playlists[i].Tracks, qc, &s.st.Playlists[i])
		}
	case s.st.Repeat == core.RepeatAll && qc.Type == core.ContextLiked:
		return s.playTracksLocked(ctx, s.st.LikedSongs, qc, nil)
	case s.st.Repeat == core.RepeatOff && !qc.HasSource():
		s.stopLocked()
		s.continueWithSuggestionsLocked()
		return nil
	}

	s.stopLocked()
	return nil
}

// keepLocked is a plan that leaves the queues as they are.
func (s *Store) keepLocked() Materialization {
	return Materialization{
		Queue:           slices.Clone(s.st.Queue),
		Priority:        slices.Clone(s.st.PriorityQueue),
		CurrentPlaylist: s.st.CurrentPlaylist,
	}
}

// Previous restarts the current track once it has played for a few
// seconds. Before that it goes back in history, putting the current track
// at the front of the priority queue, and the earlier track plays
// standalone. Without a live session nothing has elapsed.
func (s *Store) Previous(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.st.CurrentTrack
	if cur == nil {
		return nil
	}
	if s.elapsedLocked() > restartThreshold || len(s.st.History) == 0 {
		if s.session == nil {
			return s.startLocked(ctx, *cur, s.currentContextLocked(), s.keepLocked(), false)
		}
		return s.seekLocked(0)
	}

	last := len(s.st.History) - 1
	prev := s.st.History[last]
	s.st.History = s.st.History[:last]

	plan := s.keepLocked()
	plan.CurrentPlaylist = nil
	plan.Queue = without(plan.Queue, prev.ID)
	plan.Priority = append([]core.Track{*cur}, without(plan.Priority, prev.ID)...)
	return s.startLocked(ctx, prev, core.QueueContext{Type: core.ContextStandalone}, plan, false)
}

// elapsedLocked is the live session's position, or 0 when idle.
func (s *Store) elapsedLocked() float64 {
	if s.session == nil {
		return 0
	}
	return s.session.Position()
}

// ToggleShuffle flips shuffle. Turning it on with an active context
// reshuffles both queues in place.
func (s *Store) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Shuffled = !s.st.Shuffled
	if s.st.Context != nil {
		s.st.Context.Shuffled = s.st.Shuffled
		if s.st.Shuffled {
			shuffle(s.rng, s.st.PriorityQueue)
			shuffle(s.rng, s.st.Queue)
			s.notify(core.NotifySuccess, "Queue shuffled")
		}
	}
	return s.st.Shuffled
}

// ToggleRepeat cycles OFF, ONE and ALL.
func (s *Store) ToggleRepeat() core.RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.st.Repeat = s.st.Repeat.Next()
	switch s.st.Repeat {
	case core.RepeatOne:
		s.notify(core.NotifySuccess, "Repeat once")
	case core.RepeatAll:
		s.notify(core.NotifySuccess, "Repeat all")
	default:
		s.notify(core.NotifySuccess, "Repeat off")
	}
	return s.st.Repeat
}

// PlayPlaylist plays a playlist from the top, optionally shuffled.
func (s *Store) PlayPlaylist(ctx context.Context, id string, shuffled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.st.Playlists, func(p core.Playlist) bool { return p.ID == id })
	if i < 0 {
		s.notify(core.NotifyError, "Playlist not found")
		return herrors.ErrPlaylistNotFound
	}
	qc := core.QueueContext{Type: core.ContextPlaylist, SourceID: id, Shuffled: shuffled}
	return s.playTracksLocked(ctx, s.st.Playlists[i].Tracks, qc, &s.st.Playlists[i])
}

// PlayLikedSongs plays the liked list from the top, optionally shuffled.
func (s *Store) PlayLikedSongs(ctx context.Context, shuffled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	qc := core.QueueContext{Type: core.ContextLiked, Shuffled: shuffled}
	return s.playTracksLocked(ctx, s.st.LikedSongs, qc, nil)
}

// ShufflePlaylist plays tracks in random order as a standalone session.
func (s *Store) ShufflePlaylist(ctx context.Context, tracks []core.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := lo.UniqBy(playable(tracks), func(t core.Track) string { return t.ID })
	if len(order) == 0 {
		s.notify(core.NotifyError, "No tracks to shuffle")
		return herrors.ErrNoAudio
	}
	shuffle(s.rng, order)

	qc := core.QueueContext{Type: core.ContextStandalone}
	if err := s.startLocked(ctx, order[0], qc, Materialization{Queue: order[1:]}, true); err != nil {
		return err
	}
	s.notify(core.NotifySuccess, "Shuffling playlist")
	return nil
}

// playTracksLocked starts the first of tracks with the rest queued and the
// priority queue cleared. A new source invalidates cached similar songs.
func (s *Store) playTracksLocked(ctx context.Context, tracks []core.Track, qc core.QueueContext, playlist *core.Playlist) error {
	if len(tracks) == 0 {
		s.stopLocked()
		return nil
	}
	order := slices.Clone(tracks)
	if qc.Shuffled {
		shuffle(s.rng, order)
	}

	var current *core.Playlist
	if playlist != nil {
		p := clonePlaylist(*playlist)
		current = &p
	}
	s.similar.Purge()
	s.st.Suggestions = nil
	return s.startLocked(ctx, order[0], qc, Materialization{Queue: order[1:], CurrentPlaylist: current}, true)
}
