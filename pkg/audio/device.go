package audio

// CaptureDevice reads PCM16 audio from a microphone. Read blocks until a
// chunk is available or the device is closed; a closed device returns an
// error, which unblocks a capture loop waiting on it.
type CaptureDevice interface {
	// Read fills p with captured PCM bytes and returns the count.
	Read(p []byte) (int, error)

	// Close stops capture and releases the device.
	// Safe to call more than once.
	Close() error
}

// PlaybackDevice writes PCM16 audio to an output device. Write blocks until
// the full buffer has been handed to the device.
type PlaybackDevice interface {
	// Write plays p to completion and returns the bytes written.
	Write(p []byte) (int, error)

	// Close drains and releases the device.
	// Safe to call more than once.
	Close() error
}

// Opener opens exclusive audio devices. Implementations: PortAudio for real
// hardware, MockOpener for tests. bufBytes is the device buffer size computed
// from the format and buffer period.
type Opener interface {
	OpenCapture(f Format, bufBytes int) (CaptureDevice, error)
	OpenPlayback(f Format, bufBytes int) (PlaybackDevice, error)
}
