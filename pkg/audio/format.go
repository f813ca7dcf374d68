package audio

import (
	"fmt"
	"time"
)

// Default sample rates used by the assistant: microphone capture feeds the
// recognizer at 16 kHz, synthesized speech arrives at 22.05 kHz.
const (
	CaptureSampleRate  = 16000
	PlaybackSampleRate = 22050
)

// DefaultBufferDuration is the device buffer period used when none is
// configured. 20ms keeps capture latency low without starving the device.
const DefaultBufferDuration = 20 * time.Millisecond

// Format describes linear PCM audio parameters.
type Format struct {
	// SampleRate in Hz (e.g., 16000 for capture, 22050 for playback).
	SampleRate int

	// Channels is 1 for mono, 2 for stereo.
	Channels int

	// BitDepth is the bits per sample (16 for PCM16).
	BitDepth int
}

// CaptureFormat returns the microphone format: 16 kHz mono PCM16.
func CaptureFormat() Format {
	return Format{SampleRate: CaptureSampleRate, Channels: 1, BitDepth: 16}
}

// PlaybackFormat returns the speaker format for synthesized audio at the
// given rate, mono PCM16.
func PlaybackFormat(sampleRate int) Format {
	return Format{SampleRate: sampleRate, Channels: 1, BitDepth: 16}
}

// Validate checks that the format is usable.
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("audio: sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("audio: channels must be positive, got %d", f.Channels)
	}
	if f.BitDepth != 16 {
		return fmt.Errorf("audio: only 16-bit PCM is supported, got %d", f.BitDepth)
	}
	return nil
}

// BytesPerFrame returns the size of one sample frame across all channels.
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitDepth / 8
}

// BytesPerSecond returns the PCM byte rate.
func (f Format) BytesPerSecond() int {
	return f.SampleRate * f.BytesPerFrame()
}

// BufferSize returns the device buffer size in bytes for one buffer period,
// rounded to a whole frame.
func (f Format) BufferSize(period time.Duration) int {
	frames := int(float64(f.SampleRate) * period.Seconds())
	if frames < 1 {
		frames = 1
	}
	return frames * f.BytesPerFrame()
}

// Duration returns the playback duration of n PCM bytes in this format.
func (f Format) Duration(n int) time.Duration {
	bps := f.BytesPerSecond()
	if bps == 0 {
		return 0
	}
	return time.Duration(float64(n) / float64(bps) * float64(time.Second))
}
