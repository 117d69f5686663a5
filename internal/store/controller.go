package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
)

// PlayTrack starts track. A nil qc is resolved from the current state.
func (s *Store) PlayTrack(ctx context.Context, track core.Track, qc *core.QueueContext) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(ctx, track, qc)
}

// selectLocked is the full play intent: resolve, reset on a context change,
// materialize and start.
func (s *Store) selectLocked(ctx context.Context, track core.Track, qc *core.QueueContext) error {
	if !track.Playable() {
		s.notify(core.NotifyError, "No audio available for this track")
		return herrors.ErrNoAudio
	}

	resolved := ResolveContext(track, &s.st)
	if qc != nil {
		resolved = *qc
	}

	if s.st.Context == nil || s.st.Context.Type != resolved.Type {
		s.st.Queue = nil
		s.st.PriorityQueue = nil
		s.st.Suggestions = nil
	}

	plan := Materialize(track, resolved, &s.st, s.rng)
	if plan.Stale {
		s.log.Debug("track not found in its source",
			zap.String("track", track.ID),
			zap.String("context", string(resolved.Type)),
			zap.Error(herrors.ErrStaleReference))
	}
	return s.startLocked(ctx, track, resolved, plan, true)
}

// startLocked installs plan and opens a session for track. The outgoing
// track goes onto history when pushHistory is set and it is a different
// track.
func (s *Store) startLocked(ctx context.Context, track core.Track, qc core.QueueContext, plan Materialization, pushHistory bool) error {
	if !track.Playable() {
		s.notify(core.NotifyError, "No audio available for this track")
		return herrors.ErrNoAudio
	}

	s.st.Queue = without(plan.Queue, track.ID)
	s.st.PriorityQueue = without(plan.Priority, track.ID)
	s.st.CurrentPlaylist = plan.CurrentPlaylist
	s.st.Context = &qc

	s.releaseLocked()

	if prev := s.st.CurrentTrack; prev != nil && pushHistory && !prev.Same(track) {
		s.st.History = append(s.st.History, *prev)
	}

	s.selection++
	s.st.CurrentTrack = &track
	s.st.Status = core.StatusLoading
	s.st.ArtistImage = track.AlbumArtURL
	s.st.Playback.IsPlaying = false
	s.st.Playback.CurrentTime = 0
	s.st.Playback.Duration = 0

	s.recordRecentLocked(track)
	s.metrics.RecordPlay(string(qc.Type))
	s.publishQueueLocked()

	s.sessionGen++
	gen := s.sessionGen
	session, err := s.player.Start(ctx, track.AudioURL,
		core.StartOptions{Volume: s.st.Playback.Volume},
		sessionEvents{store: s, gen: gen})
	if err != nil {
		s.failLocked(err)
		return fmt.Errorf("%w: %w", herrors.ErrPlaybackLoad, err)
	}
	s.session = session

	s.log.Info("playing",
		zap.String("track", track.ID),
		zap.String("name", track.Name),
		zap.String("context", string(qc.Type)),
		zap.Int("queued", len(s.st.PriorityQueue)+len(s.st.Queue)))

	s.fetchArtistImageLocked(track)
	if plan.NeedsSuggestions {
		s.fillFromSimilarLocked(track)
	}
	return nil
}

// releaseLocked stops the poll and frees the session.
func (s *Store) releaseLocked() {
	if s.stopPoll != nil {
		close(s.stopPoll)
		s.stopPoll = nil
	}
	if s.session != nil {
		s.session.Release()
		s.session = nil
	}
	// Events still in flight for the old session are dropped.
	s.sessionGen++
}

// stopLocked releases the session and returns to Idle.
func (s *Store) stopLocked() {
	s.releaseLocked()
	s.st.Status = core.StatusIdle
	s.st.Playback.IsPlaying = false
	s.publishQueueLocked()
}

func (s *Store) failLocked(err error) {
	s.stopLocked()
	s.metrics.RecordPlaybackError()
	s.log.Warn("playback failed", zap.Error(err))
	s.notify(core.NotifyError, "Failed to load audio")
}

// Pause pauses the current session.
func (s *Store) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || (s.st.Status != core.StatusPlaying && s.st.Status != core.StatusLoading) {
		return nil
	}
	if err := s.session.Pause(); err != nil {
		return err
	}
	s.st.Status = core.StatusPaused
	s.st.Playback.IsPlaying = false
	return nil
}

// Resume resumes a paused session.
func (s *Store) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil || s.st.Status != core.StatusPaused {
		return nil
	}
	if err := s.session.Resume(); err != nil {
		return err
	}
	if s.st.Playback.Duration > 0 {
		s.st.Status = core.StatusPlaying
		s.st.Playback.IsPlaying = true
	} else {
		s.st.Status = core.StatusLoading
	}
	return nil
}

// TogglePlayback pauses when playing and resumes when paused.
func (s *Store) TogglePlayback() error {
	s.mu.Lock()
	status := s.st.Status
	s.mu.Unlock()
	if status == core.StatusPaused {
		return s.Resume()
	}
	return s.Pause()
}

// Seek moves to seconds, clamped to the track.
func (s *Store) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekLocked(seconds)
}

func (s *Store) seekLocked(seconds float64) error {
	if s.session == nil {
		return nil
	}
	seconds = max(seconds, 0)
	if d := s.st.Playback.Duration; d > 0 {
		seconds = min(seconds, d)
	}
	if err := s.session.Seek(seconds); err != nil {
		return err
	}
	s.st.Playback.CurrentTime = seconds
	return nil
}

// SetVolume sets the volume in [0, 1] for this and later sessions.
func (s *Store) SetVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v = min(max(v, 0), 1)
	s.st.Playback.Volume = v
	if s.session == nil {
		return nil
	}
	return s.session.SetVolume(v)
}

// sessionEvents routes player events for one session generation.
type sessionEvents struct {
	store *Store
	gen   uint64
}

func (e sessionEvents) OnReady(duration float64) { e.store.onReady(e.gen, duration) }
func (e sessionEvents) OnEnded()                 { e.store.onEnded(e.gen) }
func (e sessionEvents) OnError(err error)        { e.store.onError(e.gen, err) }

func (s *Store) onReady(gen uint64, duration float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.sessionGen {
		return
	}
	s.st.Playback.Duration = duration
	if s.st.Status == core.StatusLoading {
		s.st.Status = core.StatusPlaying
		s.st.Playback.IsPlaying = true
	}
	s.startPollLocked(gen)
}

func (s *Store) onEnded(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.sessionGen {
		return
	}
	s.st.Status = core.StatusEnded
	s.st.Playback.IsPlaying = false
	s.st.Playback.CurrentTime = s.st.Playback.Duration
	if err := s.advanceLocked(s.ctx); err != nil && !errors.Is(err, herrors.ErrInvalidOperation) {
		s.log.Warn("failed to advance", zap.Error(err))
	}
}

func (s *Store) onError(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.sessionGen {
		return
	}
	s.failLocked(err)
}

// startPollLocked copies the session position into CurrentTime every
// poll interval until the session is released.
func (s *Store) startPollLocked(gen uint64) {
	if s.stopPoll != nil {
		close(s.stopPoll)
	}
	stop := make(chan struct{})
	s.stopPoll = stop

	go func() {
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !s.poll(gen) {
					return
				}
			}
		}
	}()
}

func (s *Store) poll(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.sessionGen || s.session == nil {
		return false
	}
	if s.st.Status == core.StatusPlaying {
		s.st.Playback.CurrentTime = s.session.Position()
	}
	return true
}

// fetchArtistImageLocked looks up the artist portrait in the background,
// falling back to the album art.
func (s *Store) fetchArtistImageLocked(track core.Track) {
	artist := track.PrimaryArtist()
	if artist == "" {
		return
	}
	t := s.tagLocked()
	s.background(func(ctx context.Context) {
		url, err := s.provider.ArtistImage(ctx, artist)
		if err != nil || url == "" {
			s.log.Debug("no artist image", zap.String("artist", artist), zap.Error(err))
			url = track.AlbumArtURL
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.relevantLocked(t) {
			s.st.ArtistImage = url
		}
	})
}
