//go:build !cgo

package audio

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/FL1CKfps/Harmony-player/internal/core"
	herrors "github.com/FL1CKfps/Harmony-player/internal/errors"
)

// Available indicates whether audio playback is supported in this build.
// Audio requires cgo for native sound libraries.
const Available = false

var errNoAudio = errors.New("audio output requires a cgo build")

// Player is a no-op player for builds without cgo. Every start fails.
type Player struct{}

// NewPlayer creates a no-op player.
func NewPlayer(*zap.Logger) *Player {
	return &Player{}
}

// Start always fails with a playback load error.
func (p *Player) Start(context.Context, string, core.StartOptions, core.SessionEvents) (core.Session, error) {
	return nil, fmt.Errorf("%w: %w", herrors.ErrPlaybackLoad, errNoAudio)
}
