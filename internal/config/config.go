// Package config loads and validates the assistant configuration.
//
// Configuration comes from an optional YAML file with environment variable
// overrides on top; a .env file is honored for local development. The API
// key is only ever read from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Env var names recognized on top of the YAML file.
const (
	EnvAPIKey     = "GOOGLE_API_KEY"
	EnvBackendURL = "BACKEND_URL"
	EnvUserID     = "RASEED_USER_ID"
	EnvListenAddr = "RASEED_LISTEN_ADDR"
	EnvLogLevel   = "RASEED_LOG_LEVEL"
)

// Config represents the complete assistant configuration.
type Config struct {
	Web     WebConfig     `yaml:"web"`
	Audio   AudioConfig   `yaml:"audio"`
	Speech  SpeechConfig  `yaml:"speech"`
	Backend BackendConfig `yaml:"backend"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// WebConfig contains the HTTP/websocket surface configuration.
type WebConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// AudioConfig contains capture and playback parameters.
type AudioConfig struct {
	CaptureSampleRate  int `yaml:"capture_sample_rate"`
	PlaybackSampleRate int `yaml:"playback_sample_rate"`
}

// SpeechConfig contains recognition and synthesis API configuration.
type SpeechConfig struct {
	APIKey        string `yaml:"-"`              // environment only
	RecognizeURL  string `yaml:"recognize_url"`  // empty = Google default
	SynthesizeURL string `yaml:"synthesize_url"` // empty = Google default
	LanguageCode  string `yaml:"language_code"`
	VoiceName     string `yaml:"voice_name"`
	TimeoutSec    int    `yaml:"timeout"` // seconds
}

// BackendConfig contains the assistant backend configuration.
type BackendConfig struct {
	URL        string `yaml:"url"`
	UserID     string `yaml:"user_id"`
	TimeoutSec int    `yaml:"timeout"` // seconds
}

// MetricsConfig contains the Prometheus endpoint configuration.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	ListenAddr string `yaml:"listen_addr"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Web:   WebConfig{ListenAddr: ":8080"},
		Audio: AudioConfig{CaptureSampleRate: 16000, PlaybackSampleRate: 22050},
		Speech: SpeechConfig{
			LanguageCode: "en-US",
			VoiceName:    "en-US-Neural2-F",
			TimeoutSec:   30,
		},
		Backend: BackendConfig{UserID: "123", TimeoutSec: 30},
		Metrics: MetricsConfig{Enabled: true, ListenAddr: ":9091"},
		Logging: LoggingConfig{Level: "info", Format: ""},
	}
}

// Load reads the configuration: defaults, then the YAML file at path (if
// non-empty), then environment overrides. A .env file in the working
// directory is loaded first when present.
func Load(path string) (*Config, error) {
	// Missing .env is fine; it is a development convenience.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Speech.APIKey = v
	}
	if v := os.Getenv(EnvBackendURL); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv(EnvUserID); v != "" {
		c.Backend.UserID = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.Web.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate performs validation of the configuration.
func (c *Config) Validate() error {
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Speech.Validate(); err != nil {
		return fmt.Errorf("speech config: %w", err)
	}
	if err := c.Backend.Validate(); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if c.Web.ListenAddr == "" {
		return fmt.Errorf("web config: listen_addr cannot be empty")
	}
	if c.Metrics.Enabled && c.Metrics.ListenAddr == "" {
		return fmt.Errorf("metrics config: listen_addr cannot be empty when enabled")
	}
	return nil
}

// Validate validates audio configuration.
func (a *AudioConfig) Validate() error {
	if a.CaptureSampleRate < 8000 || a.CaptureSampleRate > 48000 {
		return fmt.Errorf("capture_sample_rate must be between 8000 and 48000, got %d", a.CaptureSampleRate)
	}
	if a.PlaybackSampleRate < 8000 || a.PlaybackSampleRate > 48000 {
		return fmt.Errorf("playback_sample_rate must be between 8000 and 48000, got %d", a.PlaybackSampleRate)
	}
	return nil
}

// Validate validates speech configuration.
func (s *SpeechConfig) Validate() error {
	if s.LanguageCode == "" {
		return fmt.Errorf("language_code cannot be empty")
	}
	if s.VoiceName == "" {
		return fmt.Errorf("voice_name cannot be empty")
	}
	if s.TimeoutSec < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", s.TimeoutSec)
	}
	return nil
}

// Validate validates backend configuration.
func (b *BackendConfig) Validate() error {
	if b.UserID == "" {
		return fmt.Errorf("user_id cannot be empty")
	}
	if b.TimeoutSec < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", b.TimeoutSec)
	}
	return nil
}

// Validate validates logging configuration.
func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error, got %q", l.Level)
	}
	switch l.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("format must be json or text, got %q", l.Format)
	}
	return nil
}

// EnvInt reads an integer environment variable with a fallback.
func EnvInt(name string, fallback int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
