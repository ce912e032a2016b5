package voice

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLineRecognizer(t *testing.T) {
	rec := NewLineRecognizer(strings.NewReader("go to jobs\n\n   help  \n"))
	ctx := context.Background()
	require.NoError(t, rec.Start(ctx))

	var events []Event
	for ev := range rec.Events() {
		events = append(events, ev)
	}

	require.Len(t, events, 3)
	assert.Equal(t, Event{Kind: EventFinal, Text: "go to jobs", Confidence: 1}, events[0])
	assert.Equal(t, "help", events[1].Text)
	assert.Equal(t, EventEnd, events[2].Kind)

	assert.ErrorIs(t, rec.Start(ctx), io.EOF)
}

func TestConsoleSpeaker(t *testing.T) {
	var buf bytes.Buffer
	sp := NewConsoleSpeaker(&buf)

	sp.RepeatLast()
	sp.Speak("  ", DefaultSpeakOptions())
	sp.Speak("Hello there.", SpeakOptions{Rate: 1.2})
	sp.RepeatLast()
	sp.Cancel()

	assert.Equal(t, "[1.2x] Hello there.\n[1.2x] Hello there.\n", buf.String())
	assert.Equal(t, "Hello there.", sp.Last())
}

func TestConsoleSessionEndToEnd(t *testing.T) {
	f := newFixture(t)
	var out bytes.Buffer
	speaker := NewConsoleSpeaker(&out)
	rec := NewLineRecognizer(strings.NewReader("increase text\nwhere am i\ngo to accessibility\nrepeat\n"))

	s := NewSession(rec, NewInterpreter(nil, nil), NewDispatcher(f.page, f.settings, speaker, nil), speaker, f.settings, zap.NewNop(),
		WithRestartDelay(time.Millisecond))

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Run(ctx))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{
		"[1.0x] " + MsgActivated,
		"[1.0x] Text size increased to 18px.",
		"[1.0x] You are currently in the top of page section.",
		"[1.0x] " + announceNavigation("accessibility"),
		"[1.0x] " + announceNavigation("accessibility"),
	}, lines)
	assert.Equal(t, 18, f.current(t).FontSize)
	assert.Equal(t, "accessibility", f.page.CurrentSection())
}
