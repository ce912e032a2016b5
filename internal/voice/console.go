package voice

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// LineRecognizer treats every non-empty input line as a final utterance.
// It ends for good when the reader is exhausted.
type LineRecognizer struct {
	scanner *bufio.Scanner
	events  chan Event

	once      sync.Once
	mu        sync.Mutex
	active    bool
	exhausted bool
}

func NewLineRecognizer(r io.Reader) *LineRecognizer {
	return &LineRecognizer{
		scanner: bufio.NewScanner(r),
		events:  make(chan Event),
	}
}

func (l *LineRecognizer) Events() <-chan Event { return l.events }

func (l *LineRecognizer) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.exhausted {
		return io.EOF
	}
	l.active = true
	l.once.Do(func() { go l.read(ctx) })
	return nil
}

func (l *LineRecognizer) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
	return nil
}

func (l *LineRecognizer) read(ctx context.Context) {
	defer close(l.events)

	for l.scanner.Scan() {
		line := strings.TrimSpace(l.scanner.Text())
		if line == "" || !l.isActive() {
			continue
		}
		if !l.emit(ctx, Event{Kind: EventFinal, Text: line, Confidence: 1}) {
			return
		}
	}

	l.mu.Lock()
	l.exhausted = true
	l.active = false
	l.mu.Unlock()

	if err := l.scanner.Err(); err != nil {
		if !l.emit(ctx, Event{Kind: EventError, Code: ErrorAudioCapture, Text: err.Error()}) {
			return
		}
	}
	l.emit(ctx, Event{Kind: EventEnd})
}

func (l *LineRecognizer) isActive() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

func (l *LineRecognizer) emit(ctx context.Context, ev Event) bool {
	select {
	case <-ctx.Done():
		return false
	case l.events <- ev:
		return true
	}
}

// ConsoleSpeaker prints speech to a writer.
type ConsoleSpeaker struct {
	mu   sync.Mutex
	out  io.Writer
	last string
	opts SpeakOptions
}

func NewConsoleSpeaker(out io.Writer) *ConsoleSpeaker {
	return &ConsoleSpeaker{out: out, opts: DefaultSpeakOptions()}
}

func (c *ConsoleSpeaker) Speak(text string, opts SpeakOptions) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = text
	c.opts = opts
	c.write(text, opts)
}

// Cancel is a no-op: printed speech is never in progress.
func (c *ConsoleSpeaker) Cancel() {}

func (c *ConsoleSpeaker) RepeatLast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == "" {
		return
	}
	c.write(c.last, c.opts)
}

// Last returns the most recent announcement.
func (c *ConsoleSpeaker) Last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

func (c *ConsoleSpeaker) write(text string, opts SpeakOptions) {
	fmt.Fprintf(c.out, "[%.1fx] %s\n", opts.Rate, text)
}
