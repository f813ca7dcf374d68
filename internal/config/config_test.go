package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
	if cfg.Audio.CaptureSampleRate != 16000 {
		t.Errorf("capture sample rate = %d, want 16000", cfg.Audio.CaptureSampleRate)
	}
	if cfg.Audio.PlaybackSampleRate != 22050 {
		t.Errorf("playback sample rate = %d, want 22050", cfg.Audio.PlaybackSampleRate)
	}
	if cfg.Speech.VoiceName != "en-US-Neural2-F" {
		t.Errorf("voice name = %q", cfg.Speech.VoiceName)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
web:
  listen_addr: ":9000"
speech:
  language_code: ar-SA
  voice_name: ar-XA-Wavenet-A
backend:
  url: http://localhost:5000
  user_id: "42"
logging:
  level: debug
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Web.ListenAddr != ":9000" {
		t.Errorf("listen_addr = %q", cfg.Web.ListenAddr)
	}
	if cfg.Speech.LanguageCode != "ar-SA" {
		t.Errorf("language_code = %q", cfg.Speech.LanguageCode)
	}
	if cfg.Backend.UserID != "42" {
		t.Errorf("user_id = %q", cfg.Backend.UserID)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}

	// Unset fields keep their defaults.
	if cfg.Audio.CaptureSampleRate != 16000 {
		t.Errorf("capture sample rate = %d, want default 16000", cfg.Audio.CaptureSampleRate)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIKey, "key-from-env")
	t.Setenv(EnvBackendURL, "http://backend:8000")
	t.Setenv(EnvUserID, "999")
	t.Setenv(EnvListenAddr, ":7070")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Speech.APIKey != "key-from-env" {
		t.Errorf("APIKey = %q", cfg.Speech.APIKey)
	}
	if cfg.Backend.URL != "http://backend:8000" {
		t.Errorf("Backend.URL = %q", cfg.Backend.URL)
	}
	if cfg.Backend.UserID != "999" {
		t.Errorf("Backend.UserID = %q", cfg.Backend.UserID)
	}
	if cfg.Web.ListenAddr != ":7070" {
		t.Errorf("ListenAddr = %q", cfg.Web.ListenAddr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing file succeeded")
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad capture rate", func(c *Config) { c.Audio.CaptureSampleRate = 100 }},
		{"bad playback rate", func(c *Config) { c.Audio.PlaybackSampleRate = 0 }},
		{"empty language", func(c *Config) { c.Speech.LanguageCode = "" }},
		{"empty voice", func(c *Config) { c.Speech.VoiceName = "" }},
		{"zero speech timeout", func(c *Config) { c.Speech.TimeoutSec = 0 }},
		{"empty user id", func(c *Config) { c.Backend.UserID = "" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"empty listen addr", func(c *Config) { c.Web.ListenAddr = "" }},
		{"metrics enabled without addr", func(c *Config) { c.Metrics.ListenAddr = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() succeeded, want error")
			}
		})
	}
}

func TestEnvInt(t *testing.T) {
	t.Setenv("RASEED_TEST_INT", "17")
	if got := EnvInt("RASEED_TEST_INT", 5); got != 17 {
		t.Errorf("EnvInt = %d, want 17", got)
	}
	if got := EnvInt("RASEED_TEST_INT_UNSET", 5); got != 5 {
		t.Errorf("EnvInt fallback = %d, want 5", got)
	}
	t.Setenv("RASEED_TEST_INT_BAD", "abc")
	if got := EnvInt("RASEED_TEST_INT_BAD", 5); got != 5 {
		t.Errorf("EnvInt on garbage = %d, want 5", got)
	}
}
