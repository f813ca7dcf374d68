package voice

import "errors"

// Sentinel errors reported by the orchestrator. Device and service failures
// from the audio, stt and tts packages pass through wrapped.
var (
	// ErrPermissionDenied is returned when microphone permission is missing.
	ErrPermissionDenied = errors.New("voice: microphone permission denied")

	// ErrBusy is returned for start/stop requests while transcribing.
	ErrBusy = errors.New("voice: session busy")

	// ErrClosed is returned when the orchestrator has shut down.
	ErrClosed = errors.New("voice: orchestrator closed")
)
