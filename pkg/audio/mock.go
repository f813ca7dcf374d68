package audio

import (
	"sync"
	"time"
)

// MockOpener opens in-memory devices for testing without hardware.
// Fields configure the devices it hands out; zero value yields devices that
// capture nothing and accept all writes.
type MockOpener struct {
	// CaptureErr, when set, makes OpenCapture fail.
	CaptureErr error

	// PlaybackErr, when set, makes OpenPlayback fail.
	PlaybackErr error

	// CaptureData is the PCM the capture device yields, chunk by chunk,
	// before blocking until closed.
	CaptureData []byte

	// WriteErr is injected into the playback device's Write.
	WriteErr error

	// WriteDelay stalls each playback Write, simulating device pacing.
	WriteDelay time.Duration

	mu        sync.Mutex
	captures  []*MockCaptureDevice
	playbacks []*MockPlaybackDevice
}

// OpenCapture returns a capture device that replays CaptureData.
func (m *MockOpener) OpenCapture(f Format, bufBytes int) (CaptureDevice, error) {
	if m.CaptureErr != nil {
		return nil, m.CaptureErr
	}
	d := &MockCaptureDevice{data: m.CaptureData, closed: make(chan struct{})}
	m.mu.Lock()
	m.captures = append(m.captures, d)
	m.mu.Unlock()
	return d, nil
}

// OpenPlayback returns a playback device that records what is written.
func (m *MockOpener) OpenPlayback(f Format, bufBytes int) (PlaybackDevice, error) {
	if m.PlaybackErr != nil {
		return nil, m.PlaybackErr
	}
	d := &MockPlaybackDevice{writeErr: m.WriteErr, delay: m.WriteDelay, closed: make(chan struct{})}
	m.mu.Lock()
	m.playbacks = append(m.playbacks, d)
	m.mu.Unlock()
	return d, nil
}

// Captures returns every capture device opened so far.
func (m *MockOpener) Captures() []*MockCaptureDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockCaptureDevice(nil), m.captures...)
}

// Playbacks returns every playback device opened so far.
func (m *MockOpener) Playbacks() []*MockPlaybackDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockPlaybackDevice(nil), m.playbacks...)
}

// MockCaptureDevice replays a fixed byte stream, then blocks until closed.
type MockCaptureDevice struct {
	mu   sync.Mutex
	data []byte
	pos  int

	closed    chan struct{}
	closeOnce sync.Once
}

// Read copies the next chunk of the scripted data. Once the data is
// exhausted it blocks until Close, mirroring a silent microphone.
func (d *MockCaptureDevice) Read(p []byte) (int, error) {
	d.mu.Lock()
	if d.pos < len(d.data) {
		n := copy(p, d.data[d.pos:])
		d.pos += n
		d.mu.Unlock()
		return n, nil
	}
	d.mu.Unlock()

	<-d.closed
	return 0, ErrClosed
}

// Close unblocks any pending Read.
func (d *MockCaptureDevice) Close() error {
	d.closeOnce.Do(func() { close(d.closed) })
	return nil
}

// MockPlaybackDevice records written PCM in memory.
type MockPlaybackDevice struct {
	mu      sync.Mutex
	written []byte

	writeErr error
	delay    time.Duration

	closed    chan struct{}
	closeOnce sync.Once
}

// Write appends p to the in-memory buffer, honoring the configured error and
// delay. A close during a delayed write aborts it.
func (d *MockPlaybackDevice) Write(p []byte) (int, error) {
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-d.closed:
			return 0, ErrClosed
		}
	}
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	d.mu.Lock()
	d.written = append(d.written, p...)
	d.mu.Unlock()
	return len(p), nil
}

// Close releases the device.
func (d *MockPlaybackDevice) Close() error {
	d.closeOnce.Do(func() { close(d.closed) })
	return nil
}

// Written returns a copy of everything written so far.
func (d *MockPlaybackDevice) Written() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]byte(nil), d.written...)
}
