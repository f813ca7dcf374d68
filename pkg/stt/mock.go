package stt

import (
	"context"
	"sync"
)

// Mock implements Recognizer for testing.
type Mock struct {
	// RecognizeFunc is called when Recognize is invoked.
	// If nil, returns an empty transcript.
	RecognizeFunc func(ctx context.Context, pcm []byte, sampleRate int, language string) (*Result, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records a Recognize invocation for verification.
type MockCall struct {
	Bytes      int
	SampleRate int
	Language   string
}

// Recognize calls RecognizeFunc and records the call.
func (m *Mock) Recognize(ctx context.Context, pcm []byte, sampleRate int, language string) (*Result, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Bytes: len(pcm), SampleRate: sampleRate, Language: language})
	m.mu.Unlock()

	if m.RecognizeFunc != nil {
		return m.RecognizeFunc(ctx, pcm, sampleRate, language)
	}
	return &Result{Transcript: ""}, nil
}

// Close is a no-op.
func (m *Mock) Close() error {
	return nil
}

// Calls returns all recorded invocations.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns the number of Recognize invocations.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Verify Mock implements Recognizer at compile time.
var _ Recognizer = (*Mock)(nil)
