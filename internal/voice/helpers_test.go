package voice

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/ai"
	"github.com/spigell/nexus/internal/settings"
	"github.com/spigell/nexus/internal/store"
)

type recordingSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	rates   []float64
	cancels int
	repeats int
}

func (r *recordingSpeaker) Speak(text string, opts SpeakOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, text)
	r.rates = append(r.rates, opts.Rate)
}

func (r *recordingSpeaker) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels++
}

func (r *recordingSpeaker) RepeatLast() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.repeats++
}

func (r *recordingSpeaker) said() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.spoken...)
}

type stubResolver struct {
	cmd      ai.Command
	calls    int
	last     string
	onCalled func()
}

func (s *stubResolver) Resolve(_ context.Context, utterance string) ai.Command {
	s.calls++
	s.last = utterance
	if s.onCalled != nil {
		s.onCalled()
	}
	return s.cmd
}

type stubGenerator struct {
	reply string
	err   error
}

func (g stubGenerator) Generate(context.Context, string, []ai.Message, string) (string, error) {
	return g.reply, g.err
}

func (g stubGenerator) Model() string { return "stub" }

type fixture struct {
	page     *Page
	speaker  *recordingSpeaker
	settings *store.Document[settings.Settings]

	matched  int
	filtered []string
	saved    int
	matchErr error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		speaker:  &recordingSpeaker{},
		settings: store.NewDocument(store.NewMemory(), settings.StorageKey, settings.Default, zap.NewNop()),
	}
	f.page = NewPage(nil, PageHooks{
		MatchJobs: func(context.Context) error {
			f.matched++
			return f.matchErr
		},
		FilterJobs: func(filter string) error {
			f.filtered = append(f.filtered, filter)
			return nil
		},
		SaveProfile: func(context.Context) error {
			f.saved++
			return nil
		},
	})
	return f
}

func (f *fixture) dispatcher(log *zap.Logger) *Dispatcher {
	return NewDispatcher(f.page, f.settings, f.speaker, log)
}

func (f *fixture) current(t *testing.T) settings.Settings {
	t.Helper()
	s, err := f.settings.Load(context.Background())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	return s
}
