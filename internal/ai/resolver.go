package ai

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/logger"
	"github.com/spigell/nexus/internal/utils"
)

const (
	// ReplyUnparseable is spoken when the model reply is not a valid command.
	ReplyUnparseable = "I understood you, but had trouble processing that. Could you rephrase?"
	// ReplyUnavailable is spoken when the model could not be reached.
	ReplyUnavailable = "Sorry, I had trouble understanding. Could you try again?"

	defaultMaxLogLength = 200
)

//go:embed system_instruction.md
var systemInstruction string

// SystemInstruction returns the fixed instruction that lists the legal actions.
func SystemInstruction() string {
	return systemInstruction
}

// Resolver turns utterances into commands through a Generator. It never
// fails: model errors and malformed replies become ActionNone commands.
type Resolver struct {
	generator Generator
	history   *History
	logger    *zap.Logger
	maxLogLen int
}

func NewResolver(generator Generator, history *History, log *zap.Logger, maxLogLength int) *Resolver {
	if history == nil {
		history = NewHistory(DefaultHistoryLimit)
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Resolver{
		generator: generator,
		history:   history,
		logger:    logger.ForComponent(log, "resolver"),
		maxLogLen: maxLogLength,
	}
}

// Resolve asks the model what utterance means. The user turn is always kept
// in the history, the model turn only when the call succeeded.
func (r *Resolver) Resolve(ctx context.Context, utterance string) Command {
	r.history.Append(Message{Role: RoleUser, Content: utterance})
	turns := r.history.Messages()
	prior := turns[:len(turns)-1]

	r.logger.Debug("command resolution request",
		zap.String(logger.FieldModel, r.generator.Model()),
		zap.Int("history", len(prior)),
		zap.String("utterance", utils.TruncateForLog(utterance, r.maxLogLen)),
	)

	raw, err := r.generator.Generate(ctx, systemInstruction, prior, utterance)
	if err != nil {
		r.logger.Warn("command resolution failed", zap.Error(err))
		return Command{Action: ActionNone, Params: map[string]any{}, Response: ReplyUnavailable}
	}

	r.history.Append(Message{Role: RoleAssistant, Content: raw})

	r.logger.Debug("command resolution response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)

	cmd, err := ParseCommand(raw)
	if err != nil {
		r.logger.Warn("model reply is not a command",
			zap.Error(err),
			zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
		)
		return Command{Action: ActionNone, Params: map[string]any{}, Response: ReplyUnparseable}
	}
	return cmd
}

// Reset forgets the conversation.
func (r *Resolver) Reset() {
	r.history.Clear()
}

// History exposes the conversation log.
func (r *Resolver) History() *History {
	return r.history
}

// ParseCommand extracts, validates and coerces a command from a model reply
// that may be wrapped in prose or a fenced block.
func ParseCommand(raw string) (Command, error) {
	document := extractJSON(raw)
	if !json.Valid([]byte(document)) {
		return Command{}, fmt.Errorf("reply does not contain a JSON object")
	}
	if err := validateCommand(document); err != nil {
		return Command{}, err
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(document), &data); err != nil {
		return Command{}, fmt.Errorf("parse command: %w", err)
	}

	params, _ := data["params"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}

	return Command{
		Action:   coerceString(data["action"]),
		Params:   params,
		Response: coerceString(data["response"]),
	}, nil
}

// extractJSON strips code fences and returns the span from the first '{' to
// the last '}'.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		raw = raw[start : end+1]
	}
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
