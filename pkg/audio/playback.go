package audio

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Player plays decoded PCM buffers to the output device. A single atomic
// busy flag enforces one concurrent playback; the flag is cleared on every
// exit path exactly once.
type Player struct {
	opener Opener
	period time.Duration
	logger *slog.Logger

	busy atomic.Bool

	// OnDone, when set, is invoked after a playback goroutine finishes and
	// the busy flag has been cleared. err is nil on normal completion.
	OnDone func(err error)
}

// NewPlayer creates a player for the given device opener.
func NewPlayer(opener Opener, logger *slog.Logger) *Player {
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		opener: opener,
		period: DefaultBufferDuration,
		logger: logger.With("component", "audio.player"),
	}
}

// Busy reports whether a playback is in progress.
func (p *Player) Busy() bool {
	return p.busy.Load()
}

// Play writes the PCM buffer to the output device on a dedicated goroutine
// and returns once playback has started. While a playback is active, further
// calls are rejected with ErrPlaybackBusy and the running playback is left
// untouched. Device open failure releases the flag and returns ErrDeviceInit
// (wrapped); a write failure is reported through OnDone.
func (p *Player) Play(pcm []byte, sampleRate int) error {
	if len(pcm) == 0 {
		return ErrNoAudio
	}
	if !p.busy.CompareAndSwap(false, true) {
		return ErrPlaybackBusy
	}

	f := PlaybackFormat(sampleRate)
	dev, err := p.opener.OpenPlayback(f, f.BufferSize(p.period))
	if err != nil {
		p.busy.Store(false)
		return fmt.Errorf("%w: %v", ErrDeviceInit, err)
	}

	p.logger.Debug("playback started",
		"bytes", len(pcm),
		"sample_rate", sampleRate,
		"duration", f.Duration(len(pcm)),
	)

	go func() {
		_, werr := dev.Write(pcm)
		if cerr := dev.Close(); werr == nil && cerr != nil {
			werr = cerr
		}
		if werr != nil {
			werr = fmt.Errorf("%w: %v", ErrDeviceWrite, werr)
			p.logger.Warn("playback failed", "error", werr)
		} else {
			p.logger.Debug("playback finished", "bytes", len(pcm))
		}

		p.busy.Store(false)
		if p.OnDone != nil {
			p.OnDone(werr)
		}
	}()

	return nil
}
