// Command voice-test exercises the voice pipeline against the live Google
// APIs, independent of the assistant service. Useful for checking the
// microphone, API key and round-trip latency.
//
// Usage:
//
//	go run ./cmd/voice-test --mode speak --text "Hello from Raseed"
//	go run ./cmd/voice-test --mode record --duration 3s
//	go run ./cmd/voice-test --mode echo --loops 3
//
// Environment variables required:
//
//	GOOGLE_API_KEY - Google Speech / Text-to-Speech API key
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/raseedapp/go-raseed/pkg/audio"
	"github.com/raseedapp/go-raseed/pkg/stt"
	"github.com/raseedapp/go-raseed/pkg/tts"
)

func main() {
	mode := flag.String("mode", "echo", "Test mode: record, speak, echo")
	duration := flag.Duration("duration", 3*time.Second, "Recording duration per loop")
	text := flag.String("text", "Hello! I am your receipt assistant.", "Text to speak in speak mode")
	language := flag.String("language", "en-US", "Recognition language code")
	voiceName := flag.String("voice", tts.VoiceNeural2F, "Synthesis voice name")
	loops := flag.Int("loops", 1, "Number of loops in echo mode")
	flag.Parse()

	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		fmt.Println("❌ GOOGLE_API_KEY is required")
		os.Exit(1)
	}

	if err := audio.Init(); err != nil {
		fmt.Printf("❌ Audio init failed: %v\n", err)
		os.Exit(1)
	}
	defer audio.Terminate()

	recognizer, err := stt.NewGoogle(stt.WithAPIKey(apiKey))
	if err != nil {
		fmt.Printf("❌ Recognizer init failed: %v\n", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	synthesizer, err := tts.NewGoogle(
		tts.WithAPIKey(apiKey),
		tts.WithVoice(*language, *voiceName, tts.GenderFemale),
	)
	if err != nil {
		fmt.Printf("❌ Synthesizer init failed: %v\n", err)
		os.Exit(1)
	}
	defer synthesizer.Close()

	ctx := context.Background()

	switch *mode {
	case "record":
		if _, err := recordOnce(ctx, recognizer, *duration, *language); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	case "speak":
		if err := speakOnce(ctx, synthesizer, *text); err != nil {
			fmt.Printf("❌ %v\n", err)
			os.Exit(1)
		}
	case "echo":
		for i := 0; i < *loops; i++ {
			fmt.Printf("\n🔁 Loop %d/%d\n", i+1, *loops)
			transcript, err := recordOnce(ctx, recognizer, *duration, *language)
			if err != nil {
				fmt.Printf("❌ %v\n", err)
				continue
			}
			if transcript == "" {
				continue
			}
			if err := speakOnce(ctx, synthesizer, transcript); err != nil {
				fmt.Printf("❌ %v\n", err)
			}
		}
	default:
		fmt.Printf("❌ Unknown mode %q (want record, speak or echo)\n", *mode)
		os.Exit(1)
	}
}

func recordOnce(ctx context.Context, recognizer stt.Recognizer, d time.Duration, language string) (string, error) {
	recorder := audio.NewRecorder(audio.PortAudio{}, audio.CaptureFormat(), nil)

	fmt.Printf("🎤 Recording for %s...\n", d)
	if err := recorder.Start(); err != nil {
		return "", fmt.Errorf("start recording: %w", err)
	}
	time.Sleep(d)
	pcm, err := recorder.Stop()
	if err != nil {
		return "", fmt.Errorf("stop recording: %w", err)
	}
	fmt.Printf("   Captured %d bytes (%s)\n", len(pcm), audio.CaptureFormat().Duration(len(pcm)))

	start := time.Now()
	res, err := recognizer.Recognize(ctx, pcm, audio.CaptureSampleRate, language)
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	if res.NoSpeech {
		fmt.Printf("   No speech detected (%.0fms)\n", float64(time.Since(start).Milliseconds()))
		return "", nil
	}
	fmt.Printf("📝 Transcript (%.0fms): %s\n", float64(time.Since(start).Milliseconds()), res.Transcript)
	return res.Transcript, nil
}

func speakOnce(ctx context.Context, synthesizer tts.Provider, text string) error {
	start := time.Now()
	res, err := synthesizer.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	fmt.Printf("🔊 Synthesized %d bytes in %.0fms, playing...\n",
		len(res.Audio), float64(time.Since(start).Milliseconds()))

	player := audio.NewPlayer(audio.PortAudio{}, nil)
	done := make(chan error, 1)
	player.OnDone = func(err error) { done <- err }
	if err := player.Play(res.Audio, res.SampleRate); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	if err := <-done; err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	return nil
}
