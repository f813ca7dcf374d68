package audio

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// Init initializes the PortAudio runtime. Call once at startup, paired with
// Terminate at shutdown.
func Init() error {
	return portaudio.Initialize()
}

// Terminate shuts the PortAudio runtime down.
func Terminate() error {
	return portaudio.Terminate()
}

// PortAudio opens the default system capture and playback devices.
// The zero value is ready to use after Init.
type PortAudio struct{}

// OpenCapture opens the default microphone at the given format.
func (PortAudio) OpenCapture(f Format, bufBytes int) (CaptureDevice, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	frames := bufBytes / f.BytesPerFrame()
	if frames < 1 {
		frames = 1
	}

	buf := make([]int16, frames*f.Channels)
	stream, err := portaudio.OpenDefaultStream(f.Channels, 0, float64(f.SampleRate), frames, buf)
	if err != nil {
		return nil, fmt.Errorf("open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start capture stream: %w", err)
	}

	return &paCapture{stream: stream, buf: buf}, nil
}

// OpenPlayback opens the default output device at the given format.
func (PortAudio) OpenPlayback(f Format, bufBytes int) (PlaybackDevice, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	frames := bufBytes / f.BytesPerFrame()
	if frames < 1 {
		frames = 1
	}

	buf := make([]int16, frames*f.Channels)
	stream, err := portaudio.OpenDefaultStream(0, f.Channels, float64(f.SampleRate), frames, buf)
	if err != nil {
		return nil, fmt.Errorf("open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start playback stream: %w", err)
	}

	return &paPlayback{stream: stream, buf: buf}, nil
}

type paCapture struct {
	stream *portaudio.Stream
	buf    []int16

	mu     sync.Mutex
	closed bool
}

func (c *paCapture) Read(p []byte) (int, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	c.mu.Unlock()

	// Overflow means the device dropped samples; the chunk itself is valid.
	if err := c.stream.Read(); err != nil && err != portaudio.InputOverflowed {
		return 0, fmt.Errorf("read capture stream: %w", err)
	}
	return copy(p, SamplesToBytes(c.buf)), nil
}

func (c *paCapture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.stream.Stop()
	return c.stream.Close()
}

type paPlayback struct {
	stream *portaudio.Stream
	buf    []int16

	mu     sync.Mutex
	closed bool
}

// Write plays the full PCM buffer in device-sized chunks. The final partial
// chunk is zero-padded.
func (pb *paPlayback) Write(p []byte) (int, error) {
	samples := BytesToSamples(p)

	for off := 0; off < len(samples); off += len(pb.buf) {
		pb.mu.Lock()
		if pb.closed {
			pb.mu.Unlock()
			return off * 2, ErrClosed
		}
		pb.mu.Unlock()

		n := copy(pb.buf, samples[off:])
		for i := n; i < len(pb.buf); i++ {
			pb.buf[i] = 0
		}
		if err := pb.stream.Write(); err != nil && err != portaudio.OutputUnderflowed {
			return off * 2, fmt.Errorf("write playback stream: %w", err)
		}
	}
	return len(p), nil
}

func (pb *paPlayback) Close() error {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.closed {
		return nil
	}
	pb.closed = true
	pb.stream.Stop()
	return pb.stream.Close()
}
