package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/raseedapp/go-raseed/pkg/audio"
	"github.com/raseedapp/go-raseed/pkg/stt"
	"github.com/raseedapp/go-raseed/pkg/tts"
)

// fakeRecorder is a scriptable CaptureController.
type fakeRecorder struct {
	mu        sync.Mutex
	startErr  error
	stopBuf   []byte
	stopErr   error
	recording bool
	starts    int
}

func (f *fakeRecorder) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.recording = true
	f.starts++
	return nil
}

func (f *fakeRecorder) Stop() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.recording {
		return nil, nil
	}
	f.recording = false
	return f.stopBuf, f.stopErr
}

func (f *fakeRecorder) Format() audio.Format { return audio.CaptureFormat() }

// fakePlayer is a scriptable PlaybackController. Playback stays busy until
// finish is called.
type fakePlayer struct {
	mu      sync.Mutex
	busy    bool
	playErr error
	played  chan []byte
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{played: make(chan []byte, 4)}
}

func (f *fakePlayer) Play(pcm []byte, sampleRate int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return f.playErr
	}
	if f.busy {
		return audio.ErrPlaybackBusy
	}
	f.busy = true
	f.played <- pcm
	return nil
}

func (f *fakePlayer) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

func (f *fakePlayer) finish() {
	f.mu.Lock()
	f.busy = false
	f.mu.Unlock()
}

// fakeBridge delivers submitted transcripts on a channel.
type fakeBridge struct {
	submitted chan string
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{submitted: make(chan string, 4)}
}

func (b *fakeBridge) Submit(text string) { b.submitted <- text }

// deniedGate always refuses microphone access.
type deniedGate struct{}

func (deniedGate) HasMicrophonePermission() bool { return false }

func newTestOrchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	if opts.Recorder == nil {
		opts.Recorder = &fakeRecorder{stopBuf: []byte{0x01, 0x02}}
	}
	if opts.Player == nil {
		opts.Player = newFakePlayer()
	}
	if opts.Recognizer == nil {
		opts.Recognizer = &stt.Mock{}
	}
	if opts.Synthesizer == nil {
		opts.Synthesizer = tts.NewMock()
	}
	if opts.Bridge == nil {
		opts.Bridge = newFakeBridge()
	}
	o, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { o.Close() })
	return o
}

func waitState(t *testing.T, o *Orchestrator, want State) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for o.State() != want {
		select {
		case <-deadline:
			t.Fatalf("state = %v, want %v", o.State(), want)
		case <-time.After(time.Millisecond):
		}
	}
}

func recv(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("nothing submitted to bridge")
		return ""
	}
}

func TestOrchestrator_ToggleCaptureAndTranscribe(t *testing.T) {
	bridge := newFakeBridge()
	recognizer := &stt.Mock{
		RecognizeFunc: func(ctx context.Context, pcm []byte, sampleRate int, language string) (*stt.Result, error) {
			if sampleRate != audio.CaptureSampleRate {
				t.Errorf("sampleRate = %d, want %d", sampleRate, audio.CaptureSampleRate)
			}
			if language != "en-US" {
				t.Errorf("language = %q, want en-US", language)
			}
			return &stt.Result{Transcript: "add this receipt"}, nil
		},
	}
	o := newTestOrchestrator(t, Options{Bridge: bridge, Recognizer: recognizer})

	if err := o.Toggle(); err != nil {
		t.Fatalf("first Toggle() error = %v", err)
	}
	if o.State() != StateRecording {
		t.Fatalf("state = %v, want recording", o.State())
	}

	if err := o.Toggle(); err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}

	if got := recv(t, bridge.submitted); got != "add this receipt" {
		t.Errorf("submitted %q", got)
	}
	waitState(t, o, StateIdle)
}

func TestOrchestrator_PermissionDenied(t *testing.T) {
	rec := &fakeRecorder{}
	o := newTestOrchestrator(t, Options{Recorder: rec, Permissions: deniedGate{}})

	if err := o.Toggle(); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("Toggle() error = %v, want ErrPermissionDenied", err)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %v, want idle", o.State())
	}
	if rec.starts != 0 {
		t.Error("recorder started despite denied permission")
	}
}

func TestOrchestrator_DeviceInitFailure(t *testing.T) {
	rec := &fakeRecorder{startErr: audio.ErrDeviceInit}
	o := newTestOrchestrator(t, Options{Recorder: rec})

	if err := o.Toggle(); !errors.Is(err, audio.ErrDeviceInit) {
		t.Fatalf("Toggle() error = %v, want ErrDeviceInit", err)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %v, want idle", o.State())
	}
}

func TestOrchestrator_EmptyCapture(t *testing.T) {
	rec := &fakeRecorder{stopErr: audio.ErrNoAudio}
	o := newTestOrchestrator(t, Options{Recorder: rec})

	if err := o.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if err := o.Toggle(); !errors.Is(err, audio.ErrNoAudio) {
		t.Fatalf("second Toggle() error = %v, want ErrNoAudio", err)
	}
	if o.State() != StateIdle {
		t.Errorf("state = %v, want idle", o.State())
	}
}

func TestOrchestrator_BusyWhileTranscribing(t *testing.T) {
	gate := make(chan struct{})
	recognizer := &stt.Mock{
		RecognizeFunc: func(ctx context.Context, pcm []byte, sampleRate int, language string) (*stt.Result, error) {
			select {
			case <-gate:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &stt.Result{Transcript: "slow answer"}, nil
		},
	}
	bridge := newFakeBridge()
	o := newTestOrchestrator(t, Options{Recognizer: recognizer, Bridge: bridge})

	if err := o.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if err := o.Toggle(); err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}
	if o.State() != StateTranscribing {
		t.Fatalf("state = %v, want transcribing", o.State())
	}

	// Both gestures refuse while the recognizer is busy.
	if err := o.Toggle(); !errors.Is(err, ErrBusy) {
		t.Errorf("Toggle() while transcribing = %v, want ErrBusy", err)
	}
	if err := o.Stop(); !errors.Is(err, ErrBusy) {
		t.Errorf("Stop() while transcribing = %v, want ErrBusy", err)
	}

	close(gate)
	if got := recv(t, bridge.submitted); got != "slow answer" {
		t.Errorf("submitted %q", got)
	}
	waitState(t, o, StateIdle)

	// And the machine is usable again.
	if err := o.Toggle(); err != nil {
		t.Errorf("Toggle() after transcription error = %v", err)
	}
}

func TestOrchestrator_NoSpeechNeverSubmits(t *testing.T) {
	recognizer := &stt.Mock{
		RecognizeFunc: func(ctx context.Context, pcm []byte, sampleRate int, language string) (*stt.Result, error) {
			return &stt.Result{NoSpeech: true}, nil
		},
	}
	bridge := newFakeBridge()
	notices := make(chan string, 4)
	o := newTestOrchestrator(t, Options{
		Recognizer: recognizer,
		Bridge:     bridge,
		Notifier:   NotifierFunc(func(s string) { notices <- s }),
	})

	if err := o.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	<-notices // "Recording started"
	if err := o.Toggle(); err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}

	if got := recv(t, notices); got != "No speech detected" {
		t.Errorf("notice = %q, want no-speech notice", got)
	}
	select {
	case s := <-bridge.submitted:
		t.Errorf("bridge received %q for a no-speech result", s)
	default:
	}
	waitState(t, o, StateIdle)
}

func TestOrchestrator_RecognitionFailure(t *testing.T) {
	recognizer := &stt.Mock{
		RecognizeFunc: func(ctx context.Context, pcm []byte, sampleRate int, language string) (*stt.Result, error) {
			return nil, errors.New("503 backend unavailable")
		},
	}
	bridge := newFakeBridge()
	o := newTestOrchestrator(t, Options{Recognizer: recognizer, Bridge: bridge})

	if err := o.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if err := o.Toggle(); err != nil {
		t.Fatalf("second Toggle() error = %v", err)
	}

	waitState(t, o, StateIdle)
	select {
	case s := <-bridge.submitted:
		t.Errorf("bridge received %q after a failed recognition", s)
	default:
	}
}

func TestOrchestrator_StaleResultDropped(t *testing.T) {
	bridge := newFakeBridge()
	o := newTestOrchestrator(t, Options{Bridge: bridge})

	// A result for a session that no longer exists must be discarded.
	if err := o.post(transcriptEvent{
		sessionID: uuid.New(),
		result:    &stt.Result{Transcript: "ghost of a dead session"},
	}); err != nil {
		t.Fatalf("post() error = %v", err)
	}

	// Give the loop a chance to (wrongly) forward it.
	time.Sleep(50 * time.Millisecond)
	select {
	case s := <-bridge.submitted:
		t.Errorf("bridge received stale transcript %q", s)
	default:
	}
	if o.State() != StateIdle {
		t.Errorf("state = %v, want idle", o.State())
	}
}

func TestOrchestrator_Speak(t *testing.T) {
	player := newFakePlayer()
	o := newTestOrchestrator(t, Options{Player: player})

	if err := o.Speak("Here is your receipt summary."); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}

	select {
	case pcm := <-player.played:
		if len(pcm) == 0 {
			t.Error("player received empty buffer")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("player never received audio")
	}
}

func TestOrchestrator_SpeakWhileBusy(t *testing.T) {
	player := newFakePlayer()
	o := newTestOrchestrator(t, Options{Player: player})

	if err := o.Speak("first"); err != nil {
		t.Fatalf("first Speak() error = %v", err)
	}
	<-player.played // busy until finish

	if err := o.Speak("second"); !errors.Is(err, audio.ErrPlaybackBusy) {
		t.Errorf("second Speak() error = %v, want ErrPlaybackBusy", err)
	}

	player.finish()
	o.PlaybackFinished(nil)

	if err := o.Speak("third"); err != nil {
		t.Errorf("Speak() after playback error = %v", err)
	}
	<-player.played
}

func TestOrchestrator_SpeakSynthesisFailure(t *testing.T) {
	player := newFakePlayer()
	notices := make(chan string, 4)
	o := newTestOrchestrator(t, Options{
		Player:      player,
		Synthesizer: tts.WithError(errors.New("quota exceeded")),
		Notifier:    NotifierFunc(func(s string) { notices <- s }),
	})

	if err := o.Speak("doomed"); err != nil {
		t.Fatalf("Speak() error = %v", err)
	}
	if got := recv(t, notices); got != "Text-to-speech failed" {
		t.Errorf("notice = %q", got)
	}
	select {
	case <-player.played:
		t.Error("player received audio despite synthesis failure")
	default:
	}
}

func TestOrchestrator_SpeakDoesNotTouchCaptureState(t *testing.T) {
	player := newFakePlayer()
	o := newTestOrchestrator(t, Options{Player: player})

	if err := o.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if err := o.Speak("parallel pipelines"); err != nil {
		t.Fatalf("Speak() while recording error = %v", err)
	}
	<-player.played

	if o.State() != StateRecording {
		t.Errorf("state = %v, want recording", o.State())
	}
}

func TestOrchestrator_StopIdleIsNoop(t *testing.T) {
	o := newTestOrchestrator(t, Options{})
	if err := o.Stop(); err != nil {
		t.Errorf("Stop() when idle error = %v", err)
	}
}

func TestOrchestrator_Close(t *testing.T) {
	rec := &fakeRecorder{stopBuf: []byte{0x01}}
	o := newTestOrchestrator(t, Options{Recorder: rec})

	if err := o.Toggle(); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if rec.recording {
		t.Error("recorder still running after Close")
	}
	if err := o.Toggle(); !errors.Is(err, ErrClosed) {
		t.Errorf("Toggle() after Close error = %v, want ErrClosed", err)
	}
	if err := o.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestNew_RequiredCollaborators(t *testing.T) {
	_, err := New(Options{})
	if err == nil {
		t.Error("New() with no collaborators succeeded")
	}
}
