package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/ai"
)

type fakeRecognizer struct {
	mu       sync.Mutex
	events   chan Event
	starts   int
	stops    int
	startErr error
}

func newFakeRecognizer() *fakeRecognizer {
	return &fakeRecognizer{events: make(chan Event)}
}

func (f *fakeRecognizer) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.starts++
	return nil
}

func (f *fakeRecognizer) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeRecognizer) Events() <-chan Event { return f.events }

func (f *fakeRecognizer) startCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func newTestSession(f *fixture, rec Recognizer, resolver CommandResolver, opts ...SessionOption) *Session {
	return NewSession(rec, NewInterpreter(resolver, nil), f.dispatcher(nil), f.speaker, f.settings, zap.NewNop(), opts...)
}

func final(text string) Event {
	return Event{Kind: EventFinal, Text: text, Confidence: 0.9}
}

func TestSessionStart(t *testing.T) {
	f := newFixture(t)
	rec := newFakeRecognizer()
	s := newTestSession(f, rec, nil)
	ctx := context.Background()

	assert.Equal(t, StateIdle, s.State())
	assert.NotEmpty(t, s.ID())

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, StateListening, s.State())
	assert.Equal(t, 1, rec.startCount())
	assert.Equal(t, []string{MsgActivated}, f.speaker.said())
}

func TestSessionStartFailure(t *testing.T) {
	f := newFixture(t)
	rec := newFakeRecognizer()
	rec.startErr = errors.New("busy")
	s := newTestSession(f, rec, nil)

	require.Error(t, s.Start(context.Background()))
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, []string{"Error: " + MsgStartFailed}, f.speaker.said())
}

func TestSessionHandlesPatternUtterance(t *testing.T) {
	f := newFixture(t)
	s := newTestSession(f, newFakeRecognizer(), nil)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	s.handle(ctx, final("Go To Jobs"))

	assert.Equal(t, "jobs", f.page.CurrentSection())
	assert.Equal(t, "go to jobs", s.Transcript())
	assert.Equal(t, StateListening, s.State())
	said := f.speaker.said()
	require.Len(t, said, 2)
	assert.Contains(t, said[1], "Navigating to Job Matching section")
}

func TestSessionAlwaysAnswersModelResolution(t *testing.T) {
	tests := []struct {
		name string
		cmd  ai.Command
	}{
		{name: "unknown action", cmd: ai.Command{Action: "danceParty", Params: map[string]any{}}},
		{name: "filter without value", cmd: ai.Command{Action: ActionFilterJobs, Params: map[string]any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			resolver := &stubResolver{cmd: tt.cmd}
			s := newTestSession(f, newFakeRecognizer(), resolver)
			ctx := context.Background()
			require.NoError(t, s.Start(ctx))

			s.handle(ctx, final("please do a little dance"))

			assert.Equal(t, 1, resolver.calls)
			assert.Equal(t, []string{MsgActivated, MsgNotUnderstood}, f.speaker.said())
		})
	}
}

func TestSessionRepeatStaysSilent(t *testing.T) {
	f := newFixture(t)
	s := newTestSession(f, newFakeRecognizer(), nil)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	s.handle(ctx, final("repeat"))

	assert.Equal(t, []string{MsgActivated}, f.speaker.said())
	assert.Equal(t, 1, f.speaker.repeats)
}

func TestSessionSpeaksModelResponseBeforeDispatch(t *testing.T) {
	f := newFixture(t)
	resolver := &stubResolver{cmd: ai.Command{
		Action:   ActionToggleDarkMode,
		Params:   map[string]any{"value": true},
		Response: "Dark mode is on.",
	}}
	s := newTestSession(f, newFakeRecognizer(), resolver)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	s.handle(ctx, final("my eyes hurt, make everything darker"))

	assert.True(t, f.current(t).DarkMode)
	assert.Equal(t, []string{MsgActivated, "Dark mode is on."}, f.speaker.said())
}

func TestSessionSpeaksAtConfiguredRate(t *testing.T) {
	f := newFixture(t)
	s := newTestSession(f, newFakeRecognizer(), nil)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	s.handle(ctx, final("speak faster"))
	s.handle(ctx, final("where am i"))

	rates := f.speaker.rates
	assert.InDelta(t, 1.0, rates[0], 1e-9)
	assert.InDelta(t, 1.1, rates[len(rates)-1], 1e-9)
}

func TestSessionIgnoresUtterancesWhenIdle(t *testing.T) {
	f := newFixture(t)
	s := newTestSession(f, newFakeRecognizer(), nil)

	s.handle(context.Background(), final("go to jobs"))
	assert.Empty(t, f.speaker.said())
	assert.Equal(t, "top of page", f.page.CurrentSection())
}

func TestSessionDiscardsResolutionAfterStop(t *testing.T) {
	f := newFixture(t)
	resolver := &stubResolver{cmd: ai.Command{
		Action:   ActionToggleHighContrast,
		Params:   map[string]any{"value": true},
		Response: "High contrast enabled.",
	}}
	s := newTestSession(f, newFakeRecognizer(), resolver)
	ctx := context.Background()
	resolver.onCalled = func() { s.Stop(ctx) }
	require.NoError(t, s.Start(ctx))

	s.handle(ctx, final("i can barely see the screen"))

	assert.False(t, f.current(t).HighContrast)
	assert.Equal(t, []string{MsgActivated, MsgStopped}, f.speaker.said())
	assert.Equal(t, StateIdle, s.State())
}

func TestSessionStopVoiceCommand(t *testing.T) {
	f := newFixture(t)
	rec := newFakeRecognizer()
	s := newTestSession(f, rec, nil)
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	s.handle(ctx, final("stop listening"))

	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 1, rec.stops)
	assert.Equal(t, MsgStopped, f.speaker.said()[len(f.speaker.said())-1])

	require.NoError(t, s.Start(ctx))
	s.handle(ctx, final("start listening"))
	assert.Equal(t, MsgAlreadyActive, f.speaker.said()[len(f.speaker.said())-1])
}

func TestSessionRecognizerErrors(t *testing.T) {
	t.Run("no speech is ignored", func(t *testing.T) {
		f := newFixture(t)
		s := newTestSession(f, newFakeRecognizer(), nil)
		ctx := context.Background()
		require.NoError(t, s.Start(ctx))

		s.handle(ctx, Event{Kind: EventError, Code: ErrorNoSpeech})
		s.handle(ctx, Event{Kind: EventError, Code: ErrorAborted})
		assert.Equal(t, StateListening, s.State())
		assert.True(t, s.Enabled())
		assert.Len(t, f.speaker.said(), 1)
	})

	for _, code := range []string{ErrorNotAllowed, ErrorAudioCapture} {
		t.Run(code+" disables listening", func(t *testing.T) {
			f := newFixture(t)
			var notices []string
			rec := newFakeRecognizer()
			s := newTestSession(f, rec, nil, WithNotifier(func(msg string) { notices = append(notices, msg) }))
			ctx := context.Background()
			require.NoError(t, s.Start(ctx))

			s.handle(ctx, Event{Kind: EventError, Code: code})
			s.handle(ctx, Event{Kind: EventEnd})
			s.restarts.Wait()

			assert.Equal(t, StateDisabled, s.State())
			assert.False(t, s.Enabled())
			assert.Equal(t, []string{MsgMicUnavailable}, notices)
			assert.Equal(t, "Error: "+MsgMicUnavailable, f.speaker.said()[1])
			assert.ErrorIs(t, s.Start(ctx), ErrDisabled)
			assert.Equal(t, 1, rec.startCount())
		})
	}

	t.Run("other errors stop auto restart", func(t *testing.T) {
		f := newFixture(t)
		rec := newFakeRecognizer()
		s := newTestSession(f, rec, nil, WithRestartDelay(time.Millisecond))
		ctx := context.Background()
		require.NoError(t, s.Start(ctx))

		s.handle(ctx, Event{Kind: EventError, Code: "network"})
		s.handle(ctx, Event{Kind: EventEnd})
		s.restarts.Wait()

		assert.Equal(t, StateIdle, s.State())
		assert.True(t, s.Enabled())
		assert.Equal(t, 1, rec.startCount())
	})
}

func TestSessionRestartsAfterEnd(t *testing.T) {
	f := newFixture(t)
	rec := newFakeRecognizer()
	s := newTestSession(f, rec, nil, WithRestartDelay(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	rec.events <- Event{Kind: EventEnd}
	require.Eventually(t, func() bool { return rec.startCount() == 2 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return s.State() == StateListening }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestSessionStopSuppressesPendingRestart(t *testing.T) {
	f := newFixture(t)
	rec := newFakeRecognizer()
	s := newTestSession(f, rec, nil, WithRestartDelay(time.Hour))
	ctx := context.Background()
	require.NoError(t, s.Start(ctx))

	s.handle(ctx, Event{Kind: EventEnd})
	s.Stop(ctx)
	s.restarts.Wait()

	assert.Equal(t, 1, rec.startCount())
	assert.Equal(t, StateIdle, s.State())
}

func TestSessionRunEndsWhenEventsClose(t *testing.T) {
	f := newFixture(t)
	rec := newFakeRecognizer()
	s := newTestSession(f, rec, nil)

	close(rec.events)
	assert.NoError(t, s.Run(context.Background()))
}
