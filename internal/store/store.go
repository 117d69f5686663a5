// Package store is the player's state container: playback, the queue pair,
// history and the persisted library. All methods are safe for concurrent
// use; network fetches run in the background and are discarded when the
// selection they were made for is no longer current.
package store

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/FL1CKfps/Harmony-player/internal/cache"
	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/kv"
	"github.com/FL1CKfps/Harmony-player/internal/logging"
	"github.com/FL1CKfps/Harmony-player/internal/metrics"
)

const (
	defaultVolume       = 0.7
	defaultPollInterval = time.Second
	defaultFetchTimeout = 20 * time.Second

	DefaultSimilarTTL     = 6 * time.Hour
	DefaultTrendingTTL    = 5 * time.Minute
	DefaultSuggestionsTTL = 24 * time.Hour
)

// Options configures a Store. Player, Provider and KV are required.
type Options struct {
	Player   core.Player
	Provider core.Provider
	KV       kv.Store
	Notifier core.Notifier
	Logger   *zap.Logger
	Metrics  *metrics.Metrics

	// Rand drives every shuffle and the suggestion jitter.
	Rand *rand.Rand
	Now  func() time.Time

	// Volume in (0, 1]; zero selects the default.
	Volume  float64
	Shuffle bool
	Repeat  core.RepeatMode

	SimilarTTL      time.Duration
	TrendingTTL     time.Duration
	SuggestionsTTL  time.Duration
	MaxCacheEntries int

	PollInterval time.Duration
	FetchTimeout time.Duration
}

// Store owns the player state and the single audio session.
type Store struct {
	player   core.Player
	provider core.Provider
	kv       kv.Store
	notifier core.Notifier
	log      *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	pollInterval time.Duration
	fetchTimeout time.Duration

	similar     *cache.TimedCache[string, []core.Track]
	trending    *cache.TimedCache[string, []core.Track]
	suggestions *cache.TimedCache[string, []core.Track]
	flight      singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	bg     errgroup.Group

	mu  sync.Mutex
	st  State
	rng *rand.Rand

	session    core.Session
	sessionGen uint64
	stopPoll   chan struct{}

	// selection increments on every track start and tags background work.
	selection uint64
	closed    bool
}

// New creates a store and loads the persisted library.
func New(opts Options) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(opts.Now().UnixNano()), 0x6861726d6f6e79))
	}
	if opts.Notifier == nil {
		opts.Notifier = core.NotifierFunc(func(core.NotifyKind, string) {})
	}
	if opts.Repeat == "" {
		opts.Repeat = core.RepeatOff
	}
	if opts.Volume <= 0 || opts.Volume > 1 {
		opts.Volume = defaultVolume
	}
	if opts.SimilarTTL <= 0 {
		opts.SimilarTTL = DefaultSimilarTTL
	}
	if opts.TrendingTTL <= 0 {
		opts.TrendingTTL = DefaultTrendingTTL
	}
	if opts.SuggestionsTTL <= 0 {
		opts.SuggestionsTTL = DefaultSuggestionsTTL
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}

	cacheOpts := []cache.Option{cache.WithClock(opts.Now), cache.WithMaxEntries(opts.MaxCacheEntries)}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Store{
		player:       opts.Player,
		provider:     opts.Provider,
		kv:           opts.KV,
		notifier:     opts.Notifier,
		log:          logging.OrNop(opts.Logger).Named("store"),
		metrics:      opts.Metrics,
		now:          opts.Now,
		pollInterval: opts.PollInterval,
		fetchTimeout: opts.FetchTimeout,
		similar:      cache.New[string, []core.Track](opts.SimilarTTL, cacheOpts...),
		trending:     cache.New[string, []core.Track](opts.TrendingTTL, cacheOpts...),
		suggestions:  cache.New[string, []core.Track](opts.SuggestionsTTL, cacheOpts...),
		ctx:          ctx,
		cancel:       cancel,
		rng:          opts.Rand,
		st: State{
			Status:   core.StatusIdle,
			Playback: core.PlaybackState{Volume: opts.Volume},
			Shuffled: opts.Shuffle,
			Repeat:   opts.Repeat,
		},
	}
	s.loadLibrary()
	return s
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

// Wait blocks until background fetches finish.
func (s *Store) Wait() {
	_ = s.bg.Wait()
}

// Close releases the audio session and cancels background work.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.releaseLocked()
	s.mu.Unlock()

	s.cancel()
	s.Wait()
}

// background runs fn on the errgroup with a bounded context.
// Callers hold s.mu.
func (s *Store) background(fn func(ctx context.Context)) {
	if s.closed {
		return
	}
	s.bg.Go(func() error {
		ctx, cancel := context.WithTimeout(s.ctx, s.fetchTimeout)
		defer cancel()
		fn(ctx)
		return nil
	})
}

// tag identifies the selection a background fetch was issued for.
type tag struct {
	selection uint64
	trackID   string
}

func (s *Store) tagLocked() tag {
	t := tag{selection: s.selection}
	if s.st.CurrentTrack != nil {
		t.trackID = s.st.CurrentTrack.ID
	}
	return t
}

// relevantLocked reports whether nothing has been selected since t.
func (s *Store) relevantLocked(t tag) bool {
	return !s.closed && t == s.tagLocked()
}

func (s *Store) notify(kind core.NotifyKind, message string) {
	s.metrics.RecordNotification(string(kind))
	s.notifier.Notify(kind, message)
}

func (s *Store) publishQueueLocked() {
	s.metrics.SetQueueLengths(len(s.st.PriorityQueue), len(s.st.Queue))
}

func (s *Store) loadLibrary() {
	var playlists []core.Playlist
	s.load(kv.KeyPlaylists, &playlists)
	s.st.Playlists = withoutReserved(playlists)
	s.load(kv.KeyLikedSongs, &s.st.LikedSongs)
	s.load(kv.KeyRecentlyPlayed, &s.st.RecentlyPlayed)

	if name, ok, err := s.kv.Load(kv.KeyUserName); err != nil {
		s.log.Warn("failed to load user name", zap.Error(err))
	} else if ok {
		s.st.UserName = name
	}
}

func (s *Store) load(key string, v any) {
	raw, ok, err := s.kv.Load(key)
	if err != nil {
		s.log.Warn("failed to load", zap.String("key", key), zap.Error(err))
		return
	}
	if !ok || raw == "" {
		return
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.log.Warn("ignoring corrupt entry", zap.String("key", key), zap.Error(err))
	}
}

// save persists v under key. Failures are logged; the in-memory state
// stays authoritative.
func (s *Store) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := s.kv.Save(key, string(data)); err != nil {
		s.log.Error("failed to persist", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

func withoutReserved(playlists []core.Playlist) []core.Playlist {
	out := playlists[:0:0]
	for _, p := range playlists {
		if !core.IsReservedName(p.Name) {
			out = append(out, p)
		}
	}
	return out
}
