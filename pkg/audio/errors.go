package audio

import "errors"

// Sentinel errors for capture and playback.
var (
	// ErrDeviceInit is returned when an audio device fails to open.
	ErrDeviceInit = errors.New("audio: device failed to initialize")

	// ErrCaptureActive is returned by Start when a recording is in progress.
	ErrCaptureActive = errors.New("audio: capture already active")

	// ErrNoAudio is returned by Stop when nothing was captured.
	ErrNoAudio = errors.New("audio: no audio recorded")

	// ErrPlaybackBusy is returned by Play while another playback is active.
	ErrPlaybackBusy = errors.New("audio: playback busy")

	// ErrDeviceWrite is returned when writing to the output device fails.
	ErrDeviceWrite = errors.New("audio: device write failed")

	// ErrClosed is returned when using a closed device.
	ErrClosed = errors.New("audio: device closed")
)
