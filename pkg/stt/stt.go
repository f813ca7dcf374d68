// Package stt provides speech-to-text recognition for captured audio.
//
// A finished capture buffer is submitted as a whole; streaming and partial
// results are deliberately not supported. The Google Cloud Speech
// implementation talks to the speech:recognize REST endpoint with LINEAR16
// PCM payloads.
//
// Example usage:
//
//	rec, _ := stt.NewGoogle(
//	    stt.WithAPIKey(os.Getenv("GOOGLE_API_KEY")),
//	)
//	defer rec.Close()
//
//	res, _ := rec.Recognize(ctx, pcm, 16000, "en-US")
//	if res.NoSpeech {
//	    // nothing was said
//	}
package stt

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Result is the outcome of one recognition request. Exactly one of
// Transcript or NoSpeech is meaningful: NoSpeech is true when the service
// found no speech in the audio, otherwise Transcript holds the first
// alternative of the first result.
type Result struct {
	Transcript string
	NoSpeech   bool
}

// Recognizer transcribes a finished PCM16 capture buffer.
type Recognizer interface {
	// Recognize submits the buffer and blocks until the service answers.
	// sampleRate is the capture rate in Hz, language a BCP-47 code.
	Recognize(ctx context.Context, pcm []byte, sampleRate int, language string) (*Result, error)

	// Close releases any resources held by the recognizer.
	Close() error
}

// Config holds recognizer configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	APIKey  string
	BaseURL string

	Timeout time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Option is a functional option for configuring recognizers.
type Option func(*Config)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL overrides the default API base URL. Used by tests.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTimeout sets the request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) { c.Timeout = timeout }
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) { c.HTTPClient = client }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
		Logger:  slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}
