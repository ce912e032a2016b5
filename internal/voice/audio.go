package voice

import (
	"context"
)

type EventKind string

const (
	EventInterim EventKind = "interim"
	EventFinal   EventKind = "final"
	EventError   EventKind = "error"
	EventEnd     EventKind = "end"
)

// Recognizer error codes.
const (
	ErrorNoSpeech     = "no-speech"
	ErrorNotAllowed   = "not-allowed"
	ErrorAudioCapture = "audio-capture"
	ErrorAborted      = "aborted"
)

// Event is emitted by a Recognizer.
type Event struct {
	Kind       EventKind
	Text       string
	Confidence float64
	Code       string
}

// Recognizer is a speech recognition engine delivering events on a channel.
// Events must not be closed before the recognizer is exhausted for good.
type Recognizer interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

type SpeakOptions struct {
	Rate   float64
	Pitch  float64
	Volume float64
	Lang   string
}

// DefaultSpeakOptions mirrors a neutral speech synthesizer voice.
func DefaultSpeakOptions() SpeakOptions {
	return SpeakOptions{Rate: 1, Pitch: 1, Volume: 1, Lang: "en-US"}
}

// Speaker is a speech synthesizer. Speak cancels whatever is being said.
type Speaker interface {
	Speak(text string, opts SpeakOptions)
	Cancel()
	RepeatLast()
}
