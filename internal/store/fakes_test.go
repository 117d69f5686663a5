package store

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/kv"
	"github.com/FL1CKfps/Harmony-player/internal/metrics"
	"github.com/FL1CKfps/Harmony-player/internal/notify"
)

var errProvider = errors.New("provider down")

type fakeSession struct {
	mu       sync.Mutex
	url      string
	events   core.SessionEvents
	volume   float64
	position float64
	paused   bool
	seeks    []float64
	released bool
}

func (f *fakeSession) Pause() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
	return nil
}

func (f *fakeSession) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
	return nil
}

func (f *fakeSession) Seek(seconds float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	f.position = seconds
	return nil
}

func (f *fakeSession) SetVolume(v float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = v
	return nil
}

func (f *fakeSession) Position() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position
}

func (f *fakeSession) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = true
}

func (f *fakeSession) setPosition(p float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = p
}

func (f *fakeSession) isReleased() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

type fakePlayer struct {
	mu       sync.Mutex
	sessions []*fakeSession
	startErr error
}

func (p *fakePlayer) Start(_ context.Context, url string, opts core.StartOptions, events core.SessionEvents) (core.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startErr != nil {
		return nil, p.startErr
	}
	s := &fakeSession{url: url, events: events, volume: opts.Volume}
	p.sessions = append(p.sessions, s)
	return s, nil
}

func (p *fakePlayer) last() *fakeSession {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.sessions) == 0 {
		return nil
	}
	return p.sessions[len(p.sessions)-1]
}

func (p *fakePlayer) starts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

type fakeProvider struct {
	mu sync.Mutex

	search    map[string][]core.Track
	searchErr error

	trending      []core.Track
	trendingErr   error
	trendingCalls int

	similar      map[string][]core.Track
	similarErr   error
	similarCalls int
	// gates block Similar for a track id until closed.
	gates map[string]chan struct{}
}

func (p *fakeProvider) Search(_ context.Context, query string) ([]core.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return p.search[query], nil
}

func (p *fakeProvider) Trending(context.Context) ([]core.Track, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trendingCalls++
	if p.trendingErr != nil {
		return nil, p.trendingErr
	}
	return p.trending, nil
}

func (p *fakeProvider) Similar(ctx context.Context, track core.Track) ([]core.Track, error) {
	p.mu.Lock()
	p.similarCalls++
	gate := p.gates[track.ID]
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.similarErr != nil {
		return nil, p.similarErr
	}
	return p.similar[track.ID], nil
}

func (p *fakeProvider) ArtistImage(context.Context, string) (string, error) {
	return "", errProvider
}

func (p *fakeProvider) counts() (trending, similar int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.trendingCalls, p.similarCalls
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	store    *Store
	player   *fakePlayer
	provider *fakeProvider
	kv       *kv.MemoryStore
	notes    *notify.Recorder
	clock    *clock
	metrics  *metrics.Metrics
}

func newHarness(t *testing.T, configure ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		player:   &fakePlayer{},
		provider: &fakeProvider{similarErr: errProvider},
		kv:       kv.NewMemoryStore(),
		notes:    &notify.Recorder{},
		clock:    &clock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		metrics:  metrics.New(),
	}
	opts := Options{
		Player:       h.player,
		Provider:     h.provider,
		KV:           h.kv,
		Notifier:     h.notes,
		Metrics:      h.metrics,
		Rand:         rand.New(rand.NewPCG(1, 2)),
		Now:          h.clock.Now,
		PollInterval: time.Hour,
	}
	for _, fn := range configure {
		fn(&opts)
	}
	h.store = New(opts)
	t.Cleanup(h.store.Close)
	return h
}

// end finishes the current session as the audio engine would.
func (h *harness) end(t *testing.T) {
	t.Helper()
	s := h.player.last()
	if s == nil {
		t.Fatal("no session to end")
	}
	s.events.OnEnded()
	h.store.Wait()
}

func (h *harness) play(t *testing.T, track core.Track, qc *core.QueueContext) {
	t.Helper()
	if err := h.store.PlayTrack(context.Background(), track, qc); err != nil {
		t.Fatalf("PlayTrack(%s) error = %v", track.ID, err)
	}
	h.store.Wait()
}

func (h *harness) lastNote(t *testing.T) notify.Message {
	t.Helper()
	m, ok := h.notes.Last()
	if !ok {
		t.Fatal("expected a notification")
	}
	return m
}

func track(id string) core.Track {
	return core.Track{
		ID:              id,
		Name:            "Song " + id,
		PrimaryArtists:  "Artist " + id,
		DurationSeconds: 200,
		AlbumArtURL:     "https://img/" + id + ".jpg",
		AudioURL:        "https://audio/" + id + ".mp4",
	}
}

func tracks(ids ...string) []core.Track {
	out := make([]core.Track, len(ids))
	for i, id := range ids {
		out[i] = track(id)
	}
	return out
}

func ids(tracks []core.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func currentID(st State) string {
	if st.CurrentTrack == nil {
		return ""
	}
	return st.CurrentTrack.ID
}

// checkInvariant fails when a track is in both queues or the current track
// is queued.
func checkInvariant(t *testing.T, st State) {
	t.Helper()
	seen := map[string]string{}
	for _, tr := range st.PriorityQueue {
		if where, dup := seen[tr.ID]; dup {
			t.Fatalf("%s appears twice (%s and priority)", tr.ID, where)
		}
		seen[tr.ID] = "priority"
	}
	for _, tr := range st.Queue {
		if where, dup := seen[tr.ID]; dup {
			t.Fatalf("%s appears twice (%s and queue)", tr.ID, where)
		}
		seen[tr.ID] = "queue"
	}
	if id := currentID(st); id != "" {
		if where, ok := seen[id]; ok {
			t.Fatalf("current track %s is also in the %s", id, where)
		}
	}
}
