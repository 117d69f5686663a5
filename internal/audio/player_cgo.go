//go:build cgo

package audio

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	"github.com/FL1CKfps/Harmony-player/internal/logging"
)

// Available indicates whether audio playback is supported in this build.
const Available = true

// sampleRate is the speaker rate every stream is resampled to.
const sampleRate = beep.SampleRate(44100)

// Player plays streams through the system speaker.
type Player struct {
	http *http.Client
	log  *zap.Logger

	initOnce sync.Once
	initErr  error
}

// NewPlayer creates a speaker-backed player.
func NewPlayer(log *zap.Logger) *Player {
	return &Player{
		http: &http.Client{Timeout: 2 * time.Minute},
		log:  logging.OrNop(log),
	}
}

func (p *Player) initSpeaker() error {
	p.initOnce.Do(func() {
		p.initErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	return p.initErr
}

// Start begins loading url in the background and returns its session at
// once. Events are delivered on their own goroutines.
func (p *Player) Start(ctx context.Context, url string, opts core.StartOptions, events core.SessionEvents) (core.Session, error) {
	loadCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &session{
		player: p,
		events: events,
		volume: opts.Volume,
		cancel: cancel,
	}
	go s.load(loadCtx, url)
	return s, nil
}

type session struct {
	player *Player
	events core.SessionEvents
	cancel context.CancelFunc

	// released is read from the speaker goroutine, which must never take mu.
	released atomic.Bool

	mu     sync.Mutex
	pipe   *Pipeline
	volume float64
	paused bool
	seekTo float64
}

func (s *session) load(ctx context.Context, url string) {
	streamer, format, err := Fetch(ctx, s.player.http, url)
	if err == nil {
		err = s.player.initSpeaker()
		if err != nil {
			streamer.Close()
		}
	}

	s.mu.Lock()
	if s.released.Load() {
		s.mu.Unlock()
		if err == nil {
			streamer.Close()
		}
		return
	}
	if err != nil {
		s.mu.Unlock()
		s.player.log.Warn("stream failed to load", zap.String("url", url), zap.Error(err))
		go s.events.OnError(err)
		return
	}

	s.pipe = NewPipeline(streamer, format, sampleRate, s.volume)
	s.pipe.Ctrl.Paused = s.paused
	if s.seekTo > 0 {
		_ = s.pipe.Seek(secondsToDuration(s.seekTo))
	}
	duration := s.pipe.Duration().Seconds()
	s.mu.Unlock()

	speaker.Play(beep.Seq(s.pipe.Volume, beep.Callback(func() {
		if !s.released.Load() {
			go s.events.OnEnded()
		}
	})))
	go s.events.OnReady(duration)
}

func (s *session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	if s.pipe != nil {
		speaker.Lock()
		s.pipe.Ctrl.Paused = true
		speaker.Unlock()
	}
	return nil
}

func (s *session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	if s.pipe != nil {
		speaker.Lock()
		s.pipe.Ctrl.Paused = false
		speaker.Unlock()
	}
	return nil
}

func (s *session) Seek(seconds float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipe == nil {
		s.seekTo = seconds
		return nil
	}
	speaker.Lock()
	defer speaker.Unlock()
	return s.pipe.Seek(secondsToDuration(seconds))
}

func (s *session) SetVolume(v float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = v
	if s.pipe != nil {
		speaker.Lock()
		s.pipe.SetVolume(v)
		speaker.Unlock()
	}
	return nil
}

func (s *session) Position() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pipe == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return s.pipe.Position().Seconds()
}

func (s *session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.cancel()
	if s.pipe != nil {
		speaker.Lock()
		s.pipe.Ctrl.Paused = true
		// A nil streamer ends the sequence; the callback sees released.
		s.pipe.Ctrl.Streamer = nil
		speaker.Unlock()
		s.pipe.Streamer.Close()
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
