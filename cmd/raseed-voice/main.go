// Command raseed-voice runs the voice-enabled receipt assistant.
//
// It serves the chat UI API over HTTP/websocket, captures microphone audio
// on demand, transcribes it with Google Speech, forwards transcripts to the
// assistant backend and speaks replies with Google Text-to-Speech.
//
// Environment variables:
//
//	GOOGLE_API_KEY     - Google Speech / Text-to-Speech API key (required)
//	BACKEND_URL        - assistant backend root URL (required)
//	RASEED_USER_ID     - conversation owner ID
//	RASEED_LISTEN_ADDR - HTTP listen address
//	RASEED_LOG_LEVEL   - debug, info, warn, error
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raseedapp/go-raseed/internal/config"
	"github.com/raseedapp/go-raseed/internal/log"
	"github.com/raseedapp/go-raseed/internal/metrics"
	"github.com/raseedapp/go-raseed/pkg/audio"
	"github.com/raseedapp/go-raseed/pkg/chat"
	"github.com/raseedapp/go-raseed/pkg/stt"
	"github.com/raseedapp/go-raseed/pkg/tts"
	"github.com/raseedapp/go-raseed/pkg/voice"
	"github.com/raseedapp/go-raseed/pkg/web"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	log.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger := log.L()

	if cfg.Speech.APIKey == "" {
		logger.Error("GOOGLE_API_KEY is required")
		os.Exit(1)
	}
	if cfg.Backend.URL == "" {
		logger.Error("BACKEND_URL is required")
		os.Exit(1)
	}

	if err := audio.Init(); err != nil {
		logger.Error("audio init failed", "error", err)
		os.Exit(1)
	}
	defer audio.Terminate()

	m := metrics.New()
	if cfg.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(cfg.Metrics.ListenAddr); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	speechTimeout := time.Duration(cfg.Speech.TimeoutSec) * time.Second

	sttOpts := []stt.Option{
		stt.WithAPIKey(cfg.Speech.APIKey),
		stt.WithTimeout(speechTimeout),
		stt.WithLogger(logger),
	}
	if cfg.Speech.RecognizeURL != "" {
		sttOpts = append(sttOpts, stt.WithBaseURL(cfg.Speech.RecognizeURL))
	}
	recognizer, err := stt.NewGoogle(sttOpts...)
	if err != nil {
		logger.Error("recognizer init failed", "error", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	ttsOpts := []tts.Option{
		tts.WithAPIKey(cfg.Speech.APIKey),
		tts.WithVoice(cfg.Speech.LanguageCode, cfg.Speech.VoiceName, tts.GenderFemale),
		tts.WithSampleRate(cfg.Audio.PlaybackSampleRate),
		tts.WithTimeout(speechTimeout),
		tts.WithLogger(logger),
	}
	if cfg.Speech.SynthesizeURL != "" {
		ttsOpts = append(ttsOpts, tts.WithBaseURL(cfg.Speech.SynthesizeURL))
	}
	synthesizer, err := tts.NewGoogle(ttsOpts...)
	if err != nil {
		logger.Error("synthesizer init failed", "error", err)
		os.Exit(1)
	}
	defer synthesizer.Close()

	backend, err := chat.NewClient(
		cfg.Backend.URL,
		cfg.Backend.UserID,
		time.Duration(cfg.Backend.TimeoutSec)*time.Second,
		logger,
	)
	if err != nil {
		logger.Error("backend client init failed", "error", err)
		os.Exit(1)
	}

	conversation := chat.NewLog()
	bridge := chat.NewBridge(backend, conversation, logger)
	defer bridge.Close()

	captureFormat := audio.Format{
		SampleRate: cfg.Audio.CaptureSampleRate,
		Channels:   1,
		BitDepth:   16,
	}
	recorder := audio.NewRecorder(audio.PortAudio{}, captureFormat, logger)
	player := audio.NewPlayer(audio.PortAudio{}, logger)

	var srv *web.Server
	orch, err := voice.New(voice.Options{
		Recorder:    recorder,
		Player:      player,
		Recognizer:  recognizer,
		Synthesizer: synthesizer,
		Bridge:      bridge,
		Language:    cfg.Speech.LanguageCode,
		Logger:      logger,
		Metrics:     m,
		Notifier: voice.NotifierFunc(func(text string) {
			if srv != nil {
				srv.Notify(text)
			}
		}),
	})
	if err != nil {
		logger.Error("voice orchestrator init failed", "error", err)
		os.Exit(1)
	}
	defer orch.Close()
	player.OnDone = orch.PlaybackFinished

	srv = web.NewServer(cfg.Web.ListenAddr, conversation, bridge, orch, m, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		if err := srv.Shutdown(); err != nil {
			logger.Warn("web server shutdown", "error", err)
		}
	case err := <-errCh:
		if err != nil {
			logger.Error("web server failed", "error", err)
			os.Exit(1)
		}
	}
}
