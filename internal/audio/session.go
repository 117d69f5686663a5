package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
)

// volumeBase is the exponent base for effects.Volume; linear volume v maps
// to log2(v).
const volumeBase = 2

// Pipeline is the chain a decoded stream plays through: pause control and
// gain. It carries no speaker state so it can be driven in tests.
type Pipeline struct {
	Streamer beep.StreamSeekCloser
	Format   beep.Format
	Ctrl     *beep.Ctrl
	Volume   *effects.Volume
}

// NewPipeline wraps streamer, resampled to rate, with pause and gain.
func NewPipeline(streamer beep.StreamSeekCloser, format beep.Format, rate beep.SampleRate, volume float64) *Pipeline {
	var s beep.Streamer = streamer
	if format.SampleRate != rate {
		s = beep.Resample(4, format.SampleRate, rate, streamer)
	}
	p := &Pipeline{
		Streamer: streamer,
		Format:   format,
		Ctrl:     &beep.Ctrl{Streamer: s},
	}
	p.Volume = &effects.Volume{Streamer: p.Ctrl, Base: volumeBase}
	p.SetVolume(volume)
	return p
}

// SetVolume applies a linear volume in [0,1].
func (p *Pipeline) SetVolume(v float64) {
	v = math.Max(0, math.Min(1, v))
	p.Volume.Silent = v == 0
	if v > 0 {
		p.Volume.Volume = math.Log2(v)
	}
}

// Duration returns the decoded length.
func (p *Pipeline) Duration() time.Duration {
	return p.Format.SampleRate.D(p.Streamer.Len())
}

// Position returns elapsed playback time.
func (p *Pipeline) Position() time.Duration {
	return p.Format.SampleRate.D(p.Streamer.Position())
}

// Seek moves to d, clamped to the stream bounds.
func (p *Pipeline) Seek(d time.Duration) error {
	n := p.Format.SampleRate.N(d)
	n = max(0, min(n, p.Streamer.Len()-1))
	return p.Streamer.Seek(n)
}
