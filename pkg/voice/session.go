package voice

import (
	"time"

	"github.com/google/uuid"

	"github.com/raseedapp/go-raseed/pkg/audio"
)

// State is the voice session state. At most one session is non-idle
// process-wide at any instant.
type State int

const (
	// StateIdle means no capture or transcription is in progress.
	StateIdle State = iota

	// StateRecording means the microphone is being captured.
	StateRecording

	// StateTranscribing means a finished buffer is at the recognizer.
	StateTranscribing
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	default:
		return "unknown"
	}
}

// Session is one capture-then-transcribe attempt. The buffer is written only
// by the capture loop while recording and becomes immutable the moment the
// session moves to transcribing.
type Session struct {
	ID        uuid.UUID
	Buffer    []byte
	Format    audio.Format
	StartedAt time.Time
}
