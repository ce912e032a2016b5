// Package ai resolves free-form utterances into structured commands with a
// language model.
package ai

import "context"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ActionNone is the action of a command that changes nothing.
const ActionNone = "none"

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is a chat-capable language model.
type Generator interface {
	// Generate returns the raw model reply to utterance given the system
	// instruction and earlier turns, oldest first.
	Generate(ctx context.Context, systemInstruction string, history []Message, utterance string) (string, error)
	Model() string
}

// Command is the structured reply of the model.
type Command struct {
	Action   string         `json:"action"`
	Params   map[string]any `json:"params"`
	Response string         `json:"response"`
}
