package store

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
	"github.com/FL1CKfps/Harmony-player/internal/fuzzy"
)

const (
	trendingKey    = "trending"
	suggestionsKey = "suggestions"

	fallbackLimit       = 5
	suggestionLimit     = 10
	suggestionArtists   = 5
	suggestionJitterMax = 0.1
)

// shared runs fn once for concurrent callers of key. The shared fetch
// outlives the caller that started it, bounded by the fetch timeout and
// the store's lifetime.
func (s *Store) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	v, err, _ := s.flight.Do(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()
		stop := context.AfterFunc(s.ctx, cancel)
		defer stop()
		return fn(fctx)
	})
	return v, err
}

// FetchTrending returns trending tracks, from cache when fresh.
func (s *Store) FetchTrending(ctx context.Context) ([]core.Track, error) {
	if tracks, ok := s.trending.Get(trendingKey); ok {
		s.metrics.RecordCache(trendingKey, true)
		s.setTrending(tracks)
		return tracks, nil
	}
	s.metrics.RecordCache(trendingKey, false)

	v, err := s.shared(ctx, trendingKey, func(ctx context.Context) (any, error) {
		tracks, err := s.provider.Trending(ctx)
		if err != nil {
			return nil, err
		}
		tracks = playable(tracks)
		s.trending.Refresh(trendingKey, tracks)
		return tracks, nil
	})
	if err != nil {
		s.log.Warn("failed to fetch trending", zap.Error(err))
		return nil, err
	}
	tracks := v.([]core.Track)
	s.setTrending(tracks)
	return tracks, nil
}

// LoadTrending fetches trending for display, notifying on failure.
func (s *Store) LoadTrending(ctx context.Context) []core.Track {
	tracks, err := s.FetchTrending(ctx)
	if err != nil {
		s.notify(core.NotifyError, "Failed to fetch trending tracks")
	}
	return tracks
}

func (s *Store) setTrending(tracks []core.Track) {
	s.mu.Lock()
	s.st.GlobalTrending = slices.Clone(tracks)
	s.mu.Unlock()
}

// FetchSimilar returns songs similar to track, from cache when fresh.
// Provider failures yield an empty result.
func (s *Store) FetchSimilar(ctx context.Context, track core.Track) []core.Track {
	if tracks, ok := s.similar.Get(track.ID); ok {
		s.metrics.RecordCache("similar", true)
		return tracks
	}
	s.metrics.RecordCache("similar", false)

	v, _ := s.shared(ctx, "similar:"+track.ID, func(ctx context.Context) (any, error) {
		tracks, err := s.provider.Similar(ctx, track)
		if err != nil {
			s.log.Debug("no similar songs", zap.String("track", track.ID), zap.Error(err))
			return []core.Track(nil), nil
		}
		tracks = without(playable(tracks), track.ID)
		if len(tracks) > 0 {
			s.similar.Refresh(track.ID, tracks)
		}
		return tracks, nil
	})
	return v.([]core.Track)
}

// FetchSuggestions returns ranked suggestions based on recent listening,
// from cache when fresh. Provider failures yield an empty result.
func (s *Store) FetchSuggestions(ctx context.Context) []core.Track {
	if tracks, ok := s.suggestions.Get(suggestionsKey); ok {
		s.metrics.RecordCache(suggestionsKey, true)
		return tracks
	}
	s.metrics.RecordCache(suggestionsKey, false)

	v, _ := s.shared(ctx, suggestionsKey, func(ctx context.Context) (any, error) {
		s.mu.Lock()
		recent := slices.Clone(s.st.RecentlyPlayed)
		existing := slices.Clone(s.st.Suggestions)
		var current *core.Track
		if s.st.CurrentTrack != nil {
			t := *s.st.CurrentTrack
			current = &t
		}
		s.mu.Unlock()

		candidates := s.suggestionCandidates(ctx, recent)
		candidates = lo.Reject(candidates, func(t core.Track, _ int) bool {
			return (current != nil && t.ID == current.ID) || core.ContainsTrack(existing, t.ID)
		})

		s.mu.Lock()
		ranked := rankSuggestions(candidates, recent, current, s.rng.Float64)
		s.mu.Unlock()

		if len(ranked) > 0 {
			s.suggestions.Refresh(suggestionsKey, ranked)
		}
		return ranked, nil
	})
	return v.([]core.Track)
}

// suggestionCandidates searches the most recent artists and adds trending.
func (s *Store) suggestionCandidates(ctx context.Context, recent []core.RecentTrack) []core.Track {
	artists := lo.Uniq(lo.FilterMap(recent, func(r core.RecentTrack, _ int) (string, bool) {
		a := strings.TrimSpace(r.PrimaryArtists)
		return a, a != ""
	}))
	artists = lo.Slice(artists, 0, suggestionArtists)

	found := make([][]core.Track, len(artists)+1)
	var result herrors.PartialResult[[]core.Track]
	errs := make([]error, len(artists)+1)

	g, gctx := errgroup.WithContext(ctx)
	for i, artist := range artists {
		g.Go(func() error {
			found[i], errs[i] = s.provider.Search(gctx, artist)
			return nil
		})
	}
	g.Go(func() error {
		found[len(artists)], errs[len(artists)] = s.FetchTrending(gctx)
		return nil
	})
	_ = g.Wait()

	for _, err := range errs {
		result.AddError(err)
	}
	if result.HasErrors() {
		s.log.Debug("suggestion sources failed", zap.String("summary", result.ErrorSummary()))
	}

	return lo.UniqBy(playable(lo.Flatten(found)), func(t core.Track) string { return t.ID })
}

// rankSuggestions scores candidates against the current track and the
// recently played list (newest first) and keeps the best.
func rankSuggestions(candidates []core.Track, recent []core.RecentTrack, current *core.Track, jitter func() float64) []core.Track {
	type scored struct {
		track core.Track
		score float64
	}

	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{track: c, score: suggestionScore(c, recent, current) + jitter()*suggestionJitterMax}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	out := make([]core.Track, 0, min(len(ranked), suggestionLimit))
	for _, r := range lo.Slice(ranked, 0, suggestionLimit) {
		out = append(out, r.track)
	}
	return out
}

func suggestionScore(t core.Track, recent []core.RecentTrack, current *core.Track) float64 {
	var score float64
	if current != nil && sameField(t.Language, current.Language) {
		score += 2
	}
	for i, r := range recent {
		bonus := 1 / float64(i+1)
		if fuzzy.SameArtist(t.PrimaryArtists, r.PrimaryArtists) {
			score += 3 * bonus
		}
		if sameField(t.Language, r.Language) {
			score += 2 * bonus
		}
		if sameField(t.Album, r.Album) {
			score += 2 * bonus
		}
	}
	return score
}

func sameField(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// fallbackLocked picks library tracks by the same artist, topped up with
// trending, for when the providers come back empty.
func (s *Store) fallbackLocked(track core.Track) []core.Track {
	taken := func(t core.Track) bool {
		return t.ID == track.ID ||
			core.ContainsTrack(s.st.Queue, t.ID) ||
			core.ContainsTrack(s.st.PriorityQueue, t.ID)
	}

	picks := lo.Filter(s.st.Tracks, func(t core.Track, _ int) bool {
		return !taken(t) && fuzzy.SameArtist(t.PrimaryArtists, track.PrimaryArtists)
	})
	if len(picks) < fallbackLimit {
		picks = append(picks, lo.Filter(s.st.GlobalTrending, func(t core.Track, _ int) bool {
			return !taken(t) && !core.ContainsTrack(picks, t.ID)
		})...)
	}
	return lo.Slice(playable(lo.UniqBy(picks, func(t core.Track) string { return t.ID })), 0, fallbackLimit)
}

// enqueueLocked appends tracks that are neither current nor queued.
func (s *Store) enqueueLocked(tracks []core.Track) []core.Track {
	fresh := lo.UniqBy(lo.Reject(tracks, func(t core.Track, _ int) bool {
		return (s.st.CurrentTrack != nil && t.ID == s.st.CurrentTrack.ID) ||
			core.ContainsTrack(s.st.Queue, t.ID) ||
			core.ContainsTrack(s.st.PriorityQueue, t.ID)
	}), func(t core.Track) string { return t.ID })
	s.st.Queue = append(s.st.Queue, fresh...)
	s.publishQueueLocked()
	return fresh
}

// fillFromSimilarLocked queues songs similar to a standalone track once
// they arrive, if the track is still the current selection.
func (s *Store) fillFromSimilarLocked(track core.Track) {
	t := s.tagLocked()
	s.background(func(ctx context.Context) {
		found := s.FetchSimilar(ctx, track)

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.relevantLocked(t) {
			s.log.Debug("discarding similar songs for a previous selection", zap.String("track", track.ID))
			return
		}
		if len(found) == 0 {
			found = s.fallbackLocked(track)
		}
		if added := s.enqueueLocked(found); len(added) > 0 {
			s.st.Suggestions = added
		}
	})
}

// continueWithSuggestionsLocked runs one suggestions fetch after a
// standalone queue runs dry and plays its results if nothing else has been
// selected meanwhile.
func (s *Store) continueWithSuggestionsLocked() {
	t := s.tagLocked()
	var last *core.Track
	if s.st.CurrentTrack != nil {
		c := *s.st.CurrentTrack
		last = &c
	}

	s.background(func(ctx context.Context) {
		found := s.FetchSuggestions(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.relevantLocked(t) || s.st.Status != core.StatusIdle {
			return
		}
		if len(found) == 0 && last != nil {
			found = s.fallbackLocked(*last)
		}
		found = lo.Reject(found, func(c core.Track, _ int) bool {
			return (last != nil && c.Same(*last)) || core.ContainsTrack(s.st.PriorityQueue, c.ID)
		})
		if len(found) == 0 {
			s.log.Info("nothing left to play")
			return
		}

		s.st.Suggestions = slices.Clone(found)
		plan := Materialization{Queue: found[1:], Priority: s.st.PriorityQueue}
		qc := core.QueueContext{Type: core.ContextStandalone}
		if err := s.startLocked(s.ctx, found[0], qc, plan, true); err != nil {
			s.log.Warn("failed to continue with suggestions", zap.Error(err))
		}
	})
}

func playable(tracks []core.Track) []core.Track {
	return lo.Filter(tracks, func(t core.Track, _ int) bool { return t.Playable() })
}
