package core

import "context"

// StartOptions configures a new audio session.
type StartOptions struct {
	Volume float64
}

// SessionEvents receives lifecycle events for one session.
// Implementations of Player must never call these synchronously from Start.
type SessionEvents interface {
	OnReady(durationSeconds float64)
	OnEnded()
	OnError(err error)
}

// Session is one live audio handle bound to a single track.
type Session interface {
	Pause() error
	Resume() error
	Seek(seconds float64) error
	SetVolume(v float64) error
	// Position returns the elapsed playback time in seconds.
	Position() float64
	// Release stops playback and frees the decoder. It is safe to call twice.
	Release()
}

// Player defines the audio engine capability.
// At most one Session is open at a time; the caller releases the old one
// before starting the next.
type Player interface {
	Start(ctx context.Context, url string, opts StartOptions, events SessionEvents) (Session, error)
}

// Provider searches for tracks and discovers related ones.
// Returned tracks are always playable.
type Provider interface {
	Search(ctx context.Context, query string) ([]Track, error)
	Trending(ctx context.Context) ([]Track, error)
	Similar(ctx context.Context, track Track) ([]Track, error)
	ArtistImage(ctx context.Context, artist string) (string, error)
}

// NotifyKind classifies a user-visible notification.
type NotifyKind string

const (
	NotifySuccess NotifyKind = "success"
	NotifyError   NotifyKind = "error"
)

// Notifier is a fire-and-forget sink for user-visible messages.
type Notifier interface {
	Notify(kind NotifyKind, message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(kind NotifyKind, message string)

// Notify calls f(kind, message).
func (f NotifierFunc) Notify(kind NotifyKind, message string) {
	f(kind, message)
}
