// Package tts provides text-to-speech synthesis for assistant replies.
//
// The Google Cloud Text-to-Speech implementation talks to the
// text:synthesize REST endpoint and returns decoded LINEAR16 PCM ready for
// the playback device. Streaming synthesis is deliberately not supported;
// replies are short and played as whole buffers.
//
// Example usage:
//
//	provider, _ := tts.NewGoogle(
//	    tts.WithAPIKey(os.Getenv("GOOGLE_API_KEY")),
//	    tts.WithVoice("en-US", tts.VoiceNeural2F, tts.GenderFemale),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Hello")
//	// result.Audio contains raw PCM16 at result.SampleRate
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the decoded PCM buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete synthesis result.
type AudioResult struct {
	// Audio contains raw PCM16 little-endian bytes.
	Audio []byte

	// SampleRate in Hz of the synthesized audio.
	SampleRate int

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the request round-trip time in milliseconds.
	LatencyMs int64
}

// Duration returns the estimated playback duration of the audio.
func (r *AudioResult) Duration() time.Duration {
	if r.SampleRate == 0 {
		return 0
	}
	samples := len(r.Audio) / 2
	return time.Duration(float64(samples) / float64(r.SampleRate) * float64(time.Second))
}
