package audio

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// Recorder states. Transitions are guarded by compare-and-swap so two
// concurrent Start (or Start/Stop) calls cannot both win.
const (
	recIdle int32 = iota
	recStarting
	recRecording
	recStopping
)

// joinTimeout bounds how long Stop waits for the capture loop to exit.
const joinTimeout = 500 * time.Millisecond

// Recorder captures microphone audio into an in-memory session buffer.
// The capture loop goroutine is the sole writer to the buffer; Stop joins the
// loop before the buffer is read, so no lock is needed around it.
type Recorder struct {
	opener Opener
	format Format
	period time.Duration
	logger *slog.Logger

	state atomic.Int32

	// Owned by Start/Stop (serialized by the state machine) and the loop.
	dev    CaptureDevice
	buf    []byte
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRecorder creates a recorder for the given device opener and format.
func NewRecorder(opener Opener, f Format, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		opener: opener,
		format: f,
		period: DefaultBufferDuration,
		logger: logger.With("component", "audio.recorder"),
	}
}

// Format returns the capture format.
func (r *Recorder) Format() Format {
	return r.format
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	return r.state.Load() == recRecording
}

// Start opens the microphone and begins the capture loop. It returns
// immediately; audio accumulates in the session buffer until Stop.
// Returns ErrCaptureActive if a recording is already running and
// ErrDeviceInit (wrapped) if the device cannot be opened.
func (r *Recorder) Start() error {
	if !r.state.CompareAndSwap(recIdle, recStarting) {
		return ErrCaptureActive
	}

	dev, err := r.opener.OpenCapture(r.format, r.format.BufferSize(r.period))
	if err != nil {
		r.state.Store(recIdle)
		return fmt.Errorf("%w: %v", ErrDeviceInit, err)
	}

	r.dev = dev
	r.buf = nil
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.captureLoop()

	// Publish only after all fields are in place so a concurrent Stop
	// cannot observe a half-initialized recorder.
	r.state.Store(recRecording)

	r.logger.Debug("recording started",
		"sample_rate", r.format.SampleRate,
		"buffer_bytes", r.format.BufferSize(r.period),
	)
	return nil
}

// captureLoop reads fixed-size chunks in a tight loop until signaled.
// A device error also ends the loop: Stop closes the device to unblock a
// pending read.
func (r *Recorder) captureLoop() {
	defer close(r.doneCh)

	chunk := make([]byte, r.format.BufferSize(r.period))
	for {
		select {
		case <-r.stopCh:
			return
		default:
		}

		n, err := r.dev.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
		}
		if err != nil {
			select {
			case <-r.stopCh:
			default:
				r.logger.Warn("capture read failed", "error", err)
			}
			return
		}
	}
}

// Stop signals the capture loop, joins it with a bounded wait, and returns
// the finished buffer. The buffer is immutable from here on. Returns
// ErrNoAudio if nothing was captured. Stopping an idle recorder is a no-op.
func (r *Recorder) Stop() ([]byte, error) {
	if !r.state.CompareAndSwap(recRecording, recStopping) {
		return nil, nil
	}

	close(r.stopCh)
	// Closing the device unblocks a read in progress.
	r.dev.Close()

	select {
	case <-r.doneCh:
	case <-time.After(joinTimeout):
		r.logger.Warn("capture loop did not exit before timeout")
	}

	buf := r.buf
	r.buf = nil
	r.dev = nil
	r.state.Store(recIdle)

	if len(buf) == 0 {
		return nil, ErrNoAudio
	}

	r.logger.Debug("recording stopped",
		"bytes", len(buf),
		"duration", r.format.Duration(len(buf)),
	)
	return buf, nil
}
