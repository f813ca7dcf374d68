package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/raseedapp/go-raseed/internal/metrics"
	"github.com/raseedapp/go-raseed/pkg/audio"
	"github.com/raseedapp/go-raseed/pkg/stt"
	"github.com/raseedapp/go-raseed/pkg/tts"
)

// Options configures an Orchestrator. Recorder, Player, Recognizer,
// Synthesizer and Bridge are required.
type Options struct {
	Recorder    CaptureController
	Player      PlaybackController
	Recognizer  stt.Recognizer
	Synthesizer tts.Provider
	Bridge      ChatBridge

	// Permissions gates capture start; nil means always granted.
	Permissions PermissionGate

	// Notifier receives transient user-facing notices; nil discards them.
	Notifier Notifier

	// Language is the recognition language code; empty means "en-US".
	Language string

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Orchestrator owns the voice session state machine. All state transitions
// happen on its internal event loop; the exported methods post events and,
// for user gestures, wait for the loop's answer.
type Orchestrator struct {
	recorder CaptureController
	player   PlaybackController
	recog    stt.Recognizer
	synth    tts.Provider
	bridge   ChatBridge
	perms    PermissionGate
	notifier Notifier
	language string
	logger   *slog.Logger
	metrics  *metrics.Metrics

	events chan event
	quit   chan struct{}
	done   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	closeOnce sync.Once

	// Loop-owned; never touched outside the event loop.
	state   State
	session *Session

	// Mirror of state for lock-free reads from other goroutines.
	stateView atomic.Int32
}

type event interface{}

type toggleEvent struct{ reply chan error }

type stopEvent struct{ reply chan error }

type speakEvent struct {
	text  string
	reply chan error
}

type closeEvent struct{ reply chan error }

type transcriptEvent struct {
	sessionID uuid.UUID
	result    *stt.Result
	err       error
}

type synthesisEvent struct {
	text   string
	result *tts.AudioResult
	err    error
}

type playbackDoneEvent struct{ err error }

// New creates an Orchestrator and starts its event loop.
func New(opts Options) (*Orchestrator, error) {
	if opts.Recorder == nil || opts.Player == nil {
		return nil, errors.New("voice: recorder and player are required")
	}
	if opts.Recognizer == nil || opts.Synthesizer == nil {
		return nil, errors.New("voice: recognizer and synthesizer are required")
	}
	if opts.Bridge == nil {
		return nil, errors.New("voice: chat bridge is required")
	}
	if opts.Language == "" {
		opts.Language = "en-US"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = NotifierFunc(func(string) {})
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		recorder: opts.Recorder,
		player:   opts.Player,
		recog:    opts.Recognizer,
		synth:    opts.Synthesizer,
		bridge:   opts.Bridge,
		perms:    opts.Permissions,
		notifier: opts.Notifier,
		language: opts.Language,
		logger:   opts.Logger.With("component", "voice"),
		metrics:  opts.Metrics,
		events:   make(chan event, 16),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
	}
	go o.run()
	return o, nil
}

// Toggle starts a capture when idle and finishes it when recording. While a
// transcription is in flight it refuses with ErrBusy.
func (o *Orchestrator) Toggle() error {
	reply := make(chan error, 1)
	if err := o.post(toggleEvent{reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Stop finishes an active capture. It is a no-op when idle and refuses with
// ErrBusy while transcribing.
func (o *Orchestrator) Stop() error {
	reply := make(chan error, 1)
	if err := o.post(stopEvent{reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// Speak synthesizes text and plays it. The playback device is checked up
// front so a busy device refuses before any synthesis request is spent;
// synthesis and playback then proceed in the background, independent of the
// capture session. Failures after acceptance are surfaced via the Notifier.
func (o *Orchestrator) Speak(text string) error {
	reply := make(chan error, 1)
	if err := o.post(speakEvent{text: text, reply: reply}); err != nil {
		return err
	}
	return <-reply
}

// State reports the current session state.
func (o *Orchestrator) State() State {
	return State(o.stateView.Load())
}

// PlaybackFinished reports playback completion back into the event loop.
// Wire it to the player's completion callback.
func (o *Orchestrator) PlaybackFinished(err error) {
	_ = o.post(playbackDoneEvent{err: err})
}

// Close abandons any active session, cancels in-flight requests and joins
// all background work. The orchestrator cannot be reused afterwards.
func (o *Orchestrator) Close() error {
	var err error
	o.closeOnce.Do(func() {
		reply := make(chan error, 1)
		if perr := o.post(closeEvent{reply: reply}); perr == nil {
			err = <-reply
		}
		close(o.quit)
		o.cancel()
		o.wg.Wait()
		<-o.done
	})
	return err
}

func (o *Orchestrator) post(ev event) error {
	select {
	case <-o.quit:
		return ErrClosed
	default:
	}
	select {
	case o.events <- ev:
		return nil
	case <-o.quit:
		return ErrClosed
	}
}

func (o *Orchestrator) run() {
	defer close(o.done)
	for ev := range o.events {
		switch ev := ev.(type) {
		case toggleEvent:
			ev.reply <- o.handleToggle()
		case stopEvent:
			ev.reply <- o.handleStop()
		case speakEvent:
			ev.reply <- o.handleSpeak(ev.text)
		case transcriptEvent:
			o.handleTranscript(ev)
		case synthesisEvent:
			o.handleSynthesis(ev)
		case playbackDoneEvent:
			o.handlePlaybackDone(ev)
		case closeEvent:
			ev.reply <- o.handleClose()
			o.drain()
			return
		}
	}
}

// drain answers gestures that raced the shutdown so no caller blocks on a
// reply that will never come. It returns once quit is closed and the queue
// is empty.
func (o *Orchestrator) drain() {
	for {
		select {
		case ev := <-o.events:
			o.refuse(ev)
		case <-o.quit:
			for {
				select {
				case ev := <-o.events:
					o.refuse(ev)
				default:
					return
				}
			}
		}
	}
}

func (o *Orchestrator) refuse(ev event) {
	switch ev := ev.(type) {
	case toggleEvent:
		ev.reply <- ErrClosed
	case stopEvent:
		ev.reply <- ErrClosed
	case speakEvent:
		ev.reply <- ErrClosed
	case closeEvent:
		ev.reply <- nil
	}
}

func (o *Orchestrator) setState(s State) {
	o.state = s
	o.stateView.Store(int32(s))
}

func (o *Orchestrator) notify(text string) {
	o.notifier.Notify(text)
}

func (o *Orchestrator) handleToggle() error {
	switch o.state {
	case StateIdle:
		return o.startCapture()
	case StateRecording:
		return o.finishCapture()
	case StateTranscribing:
		return ErrBusy
	default:
		return ErrBusy
	}
}

func (o *Orchestrator) handleStop() error {
	switch o.state {
	case StateRecording:
		return o.finishCapture()
	case StateTranscribing:
		return ErrBusy
	default:
		return nil
	}
}

func (o *Orchestrator) startCapture() error {
	if o.perms != nil && !o.perms.HasMicrophonePermission() {
		o.notify("Microphone permission required")
		return ErrPermissionDenied
	}
	if err := o.recorder.Start(); err != nil {
		o.logger.Error("capture start failed", "error", err)
		o.notify("Failed to start recording")
		return err
	}
	o.session = &Session{
		ID:        uuid.New(),
		Format:    o.recorder.Format(),
		StartedAt: time.Now(),
	}
	o.setState(StateRecording)
	if o.metrics != nil {
		o.metrics.CapturesStarted.Inc()
	}
	o.logger.Info("recording started", "session", o.session.ID)
	o.notify("Recording started")
	return nil
}

func (o *Orchestrator) finishCapture() error {
	sess := o.session
	buf, err := o.recorder.Stop()
	if err != nil {
		o.session = nil
		o.setState(StateIdle)
		if errors.Is(err, audio.ErrNoAudio) {
			if o.metrics != nil {
				o.metrics.CapturesEmpty.Inc()
			}
			o.logger.Warn("capture produced no audio", "session", sess.ID)
			o.notify("No audio recorded")
		} else {
			o.logger.Error("capture stop failed", "session", sess.ID, "error", err)
			o.notify("Recording failed")
		}
		return err
	}
	if buf == nil {
		// Recorder was not actually recording; nothing to transcribe.
		o.session = nil
		o.setState(StateIdle)
		return nil
	}

	sess.Buffer = buf
	o.setState(StateTranscribing)
	if o.metrics != nil {
		o.metrics.CapturesFinished.Inc()
		o.metrics.CaptureSeconds.Observe(sess.Format.Duration(len(buf)).Seconds())
		o.metrics.RecognitionRequests.Inc()
	}
	o.logger.Info("capture finished",
		"session", sess.ID,
		"bytes", len(buf),
		"duration", sess.Format.Duration(len(buf)),
	)

	id := sess.ID
	rate := sess.Format.SampleRate
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		start := time.Now()
		res, rerr := o.recog.Recognize(o.ctx, buf, rate, o.language)
		if o.metrics != nil {
			o.metrics.RecognitionSeconds.Observe(time.Since(start).Seconds())
		}
		_ = o.post(transcriptEvent{sessionID: id, result: res, err: rerr})
	}()
	return nil
}

func (o *Orchestrator) handleTranscript(ev transcriptEvent) {
	if o.session == nil || o.session.ID != ev.sessionID {
		if o.metrics != nil {
			o.metrics.StaleResultsDropped.Inc()
		}
		o.logger.Debug("dropping stale recognition result", "session", ev.sessionID)
		return
	}
	o.session = nil
	o.setState(StateIdle)

	switch {
	case ev.err != nil:
		if o.metrics != nil {
			o.metrics.RecognitionFailures.Inc()
		}
		o.logger.Error("recognition failed", "session", ev.sessionID, "error", ev.err)
		o.notify("Speech recognition failed")
	case ev.result.NoSpeech:
		if o.metrics != nil {
			o.metrics.RecognitionNoSpeech.Inc()
		}
		o.logger.Info("no speech detected", "session", ev.sessionID)
		o.notify("No speech detected")
	default:
		o.logger.Info("transcript ready",
			"session", ev.sessionID,
			"chars", len(ev.result.Transcript),
		)
		o.bridge.Submit(ev.result.Transcript)
	}
}

func (o *Orchestrator) handleSpeak(text string) error {
	if text == "" {
		return fmt.Errorf("voice: %w", tts.ErrEmptyText)
	}
	if o.player.Busy() {
		if o.metrics != nil {
			o.metrics.PlaybacksBusy.Inc()
		}
		o.notify("Already playing audio")
		return audio.ErrPlaybackBusy
	}
	if o.metrics != nil {
		o.metrics.SynthesisRequests.Inc()
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		start := time.Now()
		res, err := o.synth.Synthesize(o.ctx, text)
		if o.metrics != nil {
			o.metrics.SynthesisSeconds.Observe(time.Since(start).Seconds())
		}
		_ = o.post(synthesisEvent{text: text, result: res, err: err})
	}()
	return nil
}

func (o *Orchestrator) handleSynthesis(ev synthesisEvent) {
	if ev.err != nil {
		if o.metrics != nil {
			o.metrics.SynthesisFailures.Inc()
		}
		o.logger.Error("synthesis failed", "error", ev.err)
		o.notify("Text-to-speech failed")
		return
	}

	err := o.player.Play(ev.result.Audio, ev.result.SampleRate)
	switch {
	case errors.Is(err, audio.ErrPlaybackBusy):
		// Another playback started between the Speak check and now.
		if o.metrics != nil {
			o.metrics.PlaybacksBusy.Inc()
		}
		o.notify("Already playing audio")
	case err != nil:
		if o.metrics != nil {
			o.metrics.PlaybackFailures.Inc()
		}
		o.logger.Error("playback start failed", "error", err)
		o.notify("Audio playback failed")
	default:
		if o.metrics != nil {
			o.metrics.PlaybacksStarted.Inc()
		}
		o.logger.Info("playback started",
			"bytes", len(ev.result.Audio),
			"duration", ev.result.Duration(),
		)
	}
}

func (o *Orchestrator) handlePlaybackDone(ev playbackDoneEvent) {
	if ev.err != nil {
		if o.metrics != nil {
			o.metrics.PlaybackFailures.Inc()
		}
		o.logger.Error("playback failed", "error", ev.err)
		o.notify("Audio playback failed")
		return
	}
	o.logger.Debug("playback finished")
}

func (o *Orchestrator) handleClose() error {
	if o.state == StateRecording {
		// Discard whatever was captured; nobody is left to transcribe it.
		if _, err := o.recorder.Stop(); err != nil && !errors.Is(err, audio.ErrNoAudio) {
			o.logger.Warn("recorder stop during close", "error", err)
		}
	}
	o.session = nil
	o.setState(StateIdle)
	o.logger.Info("orchestrator closed")
	return nil
}
