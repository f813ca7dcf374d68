package stt

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
	googleSpeechURL = "https://speech.googleapis.com/v1/speech:recognize"
	providerGoogle  = "google"
)

// recognizeRequest is the speech:recognize request body.
type recognizeRequest struct {
	Config recognizeConfig `json:"config"`
	Audio  recognizeAudio  `json:"audio"`
}

type recognizeConfig struct {
	Encoding                   string `json:"encoding"`
	SampleRateHertz            int    `json:"sampleRateHertz"`
	LanguageCode               string `json:"languageCode"`
	EnableAutomaticPunctuation bool   `json:"enableAutomaticPunctuation"`
}

type recognizeAudio struct {
	Content string `json:"content"`
}

// recognizeResponse is the speech:recognize response body. An empty or
// absent results list means no speech was detected.
type recognizeResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Google implements Recognizer against the Google Cloud Speech REST API.
type Google struct {
	config  *Config
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewGoogle creates a Google Cloud Speech recognizer.
func NewGoogle(opts ...Option) (*Google, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = googleSpeechURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.NewClient(cfg.Timeout)
	}

	return &Google{
		config:  cfg,
		client:  client,
		logger:  cfg.Logger.With("component", "stt.google"),
		baseURL: baseURL,
	}, nil
}

// Recognize submits the capture buffer as base64 LINEAR16 and returns the
// first alternative of the first result. Requests are not retried; the user
// re-initiates capture on failure.
func (g *Google) Recognize(ctx context.Context, pcm []byte, sampleRate int, language string) (*Result, error) {
	if len(pcm) == 0 {
		return nil, WrapError(providerGoogle, ErrEmptyAudio)
	}

	start := time.Now()

	payload := recognizeRequest{
		Config: recognizeConfig{
			Encoding:                   "LINEAR16",
			SampleRateHertz:            sampleRate,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: recognizeAudio{
			Content: base64.StdEncoding.EncodeToString(pcm),
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
		return nil, WrapError(providerGoogle, fmt.Errorf("recognize request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, g.parseError(resp)
	}

	var parsed recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, WrapError(providerGoogle, fmt.Errorf("parse response: %w", err))
	}

	latency := time.Since(start).Milliseconds()

	if len(parsed.Results) == 0 || len(parsed.Results[0].Alternatives) == 0 {
		g.logger.Debug("no speech detected",
			"bytes", len(pcm),
			"latency_ms", latency,
		)
		return &Result{NoSpeech: true}, nil
	}

	transcript := parsed.Results[0].Alternatives[0].Transcript
	g.logger.Debug("transcribed audio",
		"bytes", len(pcm),
		"chars", len(transcript),
		"latency_ms", latency,
	)

	return &Result{Transcript: transcript}, nil
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

// Verify Google implements Recognizer at compile time.
var _ Recognizer = (*Google)(nil)
