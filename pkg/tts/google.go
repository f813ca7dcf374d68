package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/raseedapp/go-raseed/internal/httpc"
)

const (
	googleTTSURL   = "https://texttospeech.googleapis.com/v1/text:synthesize"
	providerGoogle = "google"
)

// synthesizeRequest is the text:synthesize request body.
type synthesizeRequest struct {
	Input       synthesisInput  `json:"input"`
	Voice       voiceSelection  `json:"voice"`
	AudioConfig audioConfigSpec `json:"audioConfig"`
}

type synthesisInput struct {
	Text string `json:"text"`
}

type voiceSelection struct {
	LanguageCode string `json:"languageCode"`
	Name         string `json:"name"`
	SSMLGender   string `json:"ssmlGender"`
}

type audioConfigSpec struct {
	AudioEncoding   string `json:"audioEncoding"`
	SampleRateHertz int    `json:"sampleRateHertz"`
}

// synthesizeResponse carries base64 audio; an empty field is an error.
type synthesizeResponse struct {
	AudioContent string `json:"audioContent"`
}

// Google implements Provider against the Google Cloud Text-to-Speech REST API.
type Google struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewGoogle creates a Google Cloud Text-to-Speech provider.
func NewGoogle(opts ...Option) (*Google, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googleTTSURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.NewClient(cfg.Timeout)
	}

	return &Google{
		config:  cfg,
		client:  client,
		logger:  cfg.Logger.With("component", "tts.google"),
		baseURL: baseURL,
	}, nil
}

// Synthesize converts text to LINEAR16 PCM at the configured sample rate.
// Requests are not retried; the user re-initiates playback on failure.
func (g *Google) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if text == "" {
		return nil, WrapError(providerGoogle, ErrEmptyText)
	}

	start := time.Now()

	payload := synthesizeRequest{
		Input: synthesisInput{Text: text},
		Voice: voiceSelection{
			LanguageCode: g.config.LanguageCode,
			Name:         g.config.VoiceName,
			SSMLGender:   string(g.config.Gender),
		},
		AudioConfig: audioConfigSpec{
			AudioEncoding:   "LINEAR16",
			SampleRateHertz: g.config.SampleRate,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, WrapError(providerGoogle, fmt.Errorf("marshal payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"?key="+g.config.APIKey, bytes.NewReader(body))
	if err != nil {
		return nil, WrapError(providerGoogle, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, WrapError(providerGoogle, fmt.Errorf("synthesize request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.parseError(resp)
	}

	var parsed synthesizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, WrapError(providerGoogle, fmt.Errorf("parse response: %w", err))
	}
	if parsed.AudioContent == "" {
		return nil, WrapError(providerGoogle, ErrNoAudioContent)
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return nil, WrapError(providerGoogle, fmt.Errorf("decode audio: %w", err))
	}

	latency := time.Since(start).Milliseconds()
	g.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
		"voice", g.config.VoiceName,
	)

	return &AudioResult{
		Audio:      audio,
		SampleRate: g.config.SampleRate,
		CharCount:  len(text),
		LatencyMs:  latency,
	}, nil
}

// Close releases resources.
func (g *Google) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

// parseError reads and parses an error response.
func (g *Google) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	message := string(body)
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Provider:   providerGoogle,
	}
}

// Verify Google implements Provider at compile time.
var _ Provider = (*Google)(nil)
