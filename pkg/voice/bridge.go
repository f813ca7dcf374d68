package voice

import "github.com/raseedapp/go-raseed/pkg/audio"

// ChatBridge consumes finalized transcripts. Submit appends a user-originated
// chat entry and triggers the backend query; both happen outside this
// package.
type ChatBridge interface {
	Submit(text string)
}

// PermissionGate answers whether microphone access has been granted. A nil
// gate is treated as granted.
type PermissionGate interface {
	HasMicrophonePermission() bool
}

// Notifier surfaces transient, user-visible notices (the mobile app showed
// these as toasts). Implementations must not block.
type Notifier interface {
	Notify(text string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(text string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(text string) { f(text) }

// CaptureController owns the microphone. Satisfied by *audio.Recorder.
type CaptureController interface {
	Start() error
	Stop() ([]byte, error)
	Format() audio.Format
}

// PlaybackController owns the output device. Satisfied by *audio.Player.
type PlaybackController interface {
	Play(pcm []byte, sampleRate int) error
	Busy() bool
}
