package voice

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/logger"
	"github.com/spigell/nexus/internal/utils"
)

type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateDisabled   State = "disabled"
)

const DefaultRestartDelay = 300 * time.Millisecond

var ErrDisabled = errors.New("voice control is disabled")

type SessionOption func(*Session)

// WithRestartDelay overrides the pause before the recognizer is restarted.
func WithRestartDelay(d time.Duration) SessionOption {
	return func(s *Session) { s.restartDelay = d }
}

// WithNotifier sets the sink for visible messages such as permission errors.
func WithNotifier(fn func(string)) SessionOption {
	return func(s *Session) { s.notify = fn }
}

// Session drives one listening session: it feeds final utterances through
// the Interpreter and Dispatcher, one at a time, and speaks every outcome.
type Session struct {
	id           string
	recognizer   Recognizer
	interpreter  *Interpreter
	dispatcher   *Dispatcher
	speaker      Speaker
	settings     SettingsStore
	logger       *zap.Logger
	restartDelay time.Duration
	notify       func(string)

	mu            sync.Mutex
	state         State
	enabled       bool
	autoRestart   bool
	generation    uint64
	transcript    string
	cancelRestart context.CancelFunc
	restarts      sync.WaitGroup
}

func NewSession(recognizer Recognizer, interpreter *Interpreter, dispatcher *Dispatcher, speaker Speaker, store SettingsStore, log *zap.Logger, opts ...SessionOption) *Session {
	id := uuid.NewString()
	s := &Session{
		id:           id,
		recognizer:   recognizer,
		interpreter:  interpreter,
		dispatcher:   dispatcher,
		speaker:      speaker,
		settings:     store,
		logger:       logger.WithFields(logger.ForComponent(log, "voice"), zap.String(logger.FieldVoiceSession, id)),
		restartDelay: DefaultRestartDelay,
		notify:       func(string) {},
		state:        StateIdle,
		enabled:      true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string { return s.id }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Transcript is the last recognized text.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcript
}

// Start begins listening and keeps the recognizer running until Stop.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if !s.enabled {
		s.mu.Unlock()
		return ErrDisabled
	}
	if s.state == StateListening || s.state == StateProcessing {
		s.mu.Unlock()
		return nil
	}
	s.autoRestart = true
	s.mu.Unlock()

	if err := s.recognizer.Start(ctx); err != nil {
		s.mu.Lock()
		s.autoRestart = false
		s.mu.Unlock()
		s.logger.Warn("could not start voice control", zap.Error(err))
		s.say(ctx, announceError(MsgStartFailed))
		return err
	}

	s.mu.Lock()
	s.state = StateListening
	s.mu.Unlock()

	s.logger.Info("voice control started")
	s.say(ctx, MsgActivated)
	return nil
}

// Stop ends listening. Pending restarts are suppressed and results of
// utterances still being resolved are discarded.
func (s *Session) Stop(ctx context.Context) {
	s.mu.Lock()
	s.autoRestart = false
	s.generation++
	if s.cancelRestart != nil {
		s.cancelRestart()
		s.cancelRestart = nil
	}
	if s.state != StateDisabled {
		s.state = StateIdle
	}
	s.mu.Unlock()

	if err := s.recognizer.Stop(); err != nil {
		s.logger.Warn("could not stop recognizer", zap.Error(err))
		return
	}
	s.logger.Info("voice control stopped")
	s.say(ctx, MsgStopped)
}

// Run consumes recognizer events until ctx is done or the event stream closes.
func (s *Session) Run(ctx context.Context) error {
	defer s.restarts.Wait()
	defer s.suppressRestart()

	events := s.recognizer.Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.handle(ctx, ev)
		}
	}
}

func (s *Session) handle(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventInterim:
		s.logger.Debug("interim result", zap.String("text", ev.Text))
	case EventFinal:
		s.handleUtterance(ctx, ev)
	case EventError:
		s.handleError(ctx, ev.Code)
	case EventEnd:
		s.handleEnd(ctx)
	}
}

func (s *Session) handleUtterance(ctx context.Context, ev Event) {
	text := Normalize(ev.Text)

	s.mu.Lock()
	if s.state != StateListening || text == "" {
		s.mu.Unlock()
		return
	}
	s.transcript = text
	s.state = StateProcessing
	gen := s.generation
	s.mu.Unlock()

	s.logger.Debug("final result", zap.String("text", text), zap.Float64("confidence", ev.Confidence))
	resolution := s.interpreter.Interpret(ctx, text)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("discarding resolution after stop", zap.String("action", resolution.Action))
		return
	}
	s.state = StateListening
	s.mu.Unlock()

	spoken := false
	if resolution.SpokenResponse != "" {
		s.say(ctx, resolution.SpokenResponse)
		spoken = true
	}

	outcome := s.dispatcher.Dispatch(ctx, resolution)
	if outcome.Announcement != "" && (!spoken || outcome.Force) {
		s.say(ctx, outcome.Announcement)
		spoken = true
	}

	switch {
	case outcome.StopListening:
		s.Stop(ctx)
	case outcome.StartListening:
		s.say(ctx, MsgAlreadyActive)
	case !spoken && !silentActions[resolution.Action]:
		s.say(ctx, MsgNotUnderstood)
	}
}

// silentActions produce speech through the speaker itself or stop it.
var silentActions = map[string]bool{
	ActionRepeatLast:   true,
	ActionStopSpeaking: true,
}

func (s *Session) handleError(ctx context.Context, code string) {
	switch code {
	case ErrorNoSpeech, ErrorAborted:
		s.logger.Debug("recognizer error ignored", zap.String("code", code))
	case ErrorNotAllowed, ErrorAudioCapture:
		s.mu.Lock()
		s.autoRestart = false
		s.enabled = false
		s.state = StateDisabled
		s.generation++
		s.mu.Unlock()

		s.logger.Warn("voice control disabled", zap.String("code", code))
		s.notify(MsgMicUnavailable)
		s.say(ctx, announceError(MsgMicUnavailable))
	default:
		s.mu.Lock()
		s.autoRestart = false
		s.mu.Unlock()
		s.logger.Error("speech recognition error", zap.String("code", code))
	}
}

func (s *Session) handleEnd(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDisabled {
		s.state = StateIdle
	}
	if !s.autoRestart || !s.enabled {
		return
	}

	restartCtx, cancel := context.WithCancel(ctx)
	if s.cancelRestart != nil {
		s.cancelRestart()
	}
	s.cancelRestart = cancel

	s.restarts.Add(1)
	go func() {
		defer s.restarts.Done()
		s.restart(restartCtx, ctx)
	}()
}

// restart waits for the restart delay on wait and starts the recognizer
// with the session context.
func (s *Session) restart(wait, ctx context.Context) {
	if err := utils.WaitFor(wait, s.restartDelay); err != nil {
		return
	}

	s.mu.Lock()
	if !s.autoRestart || !s.enabled {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.recognizer.Start(ctx); err != nil {
		s.mu.Lock()
		s.autoRestart = false
		s.mu.Unlock()
		s.logger.Warn("voice control restart blocked", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.autoRestart {
		_ = s.recognizer.Stop()
		return
	}
	s.state = StateListening
	s.logger.Debug("recognizer restarted")
}

func (s *Session) suppressRestart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoRestart = false
	if s.cancelRestart != nil {
		s.cancelRestart()
		s.cancelRestart = nil
	}
}

// say speaks text at the configured voice speed.
func (s *Session) say(ctx context.Context, text string) {
	opts := DefaultSpeakOptions()
	if s.settings != nil {
		if current, err := s.settings.Load(ctx); err == nil {
			opts.Rate = current.VoiceSpeed
			if current.Language != "" {
				opts.Lang = current.Language
			}
		}
	}
	s.speaker.Speak(text, opts)
}
