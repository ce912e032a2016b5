package voice

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/ai"
	"github.com/spigell/nexus/internal/logger"
	"github.com/spigell/nexus/internal/utils"
)

type Source string

const (
	SourcePattern  Source = "pattern"
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Resolution is what an utterance means and what to say back.
type Resolution struct {
	Utterance      string
	Action         string
	Params         map[string]any
	SpokenResponse string
	Source         Source
}

// CommandResolver resolves utterances the pattern table does not know.
// *ai.Resolver implements it.
type CommandResolver interface {
	Resolve(ctx context.Context, utterance string) ai.Command
}

// Interpreter tries the pattern table first and the model second.
type Interpreter struct {
	resolver CommandResolver
	logger   *zap.Logger
}

// NewInterpreter creates an Interpreter. A nil resolver disables the model tier.
func NewInterpreter(resolver CommandResolver, log *zap.Logger) *Interpreter {
	return &Interpreter{
		resolver: resolver,
		logger:   logger.ForComponent(log, "interpreter"),
	}
}

func (i *Interpreter) Interpret(ctx context.Context, utterance string) Resolution {
	normalized := Normalize(utterance)

	if cmd, ok := Match(normalized); ok {
		i.logger.Debug("utterance matched pattern",
			zap.String("utterance", normalized),
			zap.String("action", cmd.Action),
			zap.String("category", cmd.Category),
		)
		return Resolution{
			Utterance:      normalized,
			Action:         cmd.Action,
			Params:         cmd.Params,
			SpokenResponse: confirmations[cmd.Action],
			Source:         SourcePattern,
		}
	}

	if i.resolver == nil || normalized == "" {
		return Resolution{
			Utterance:      normalized,
			Action:         ActionNone,
			Params:         map[string]any{},
			SpokenResponse: MsgNotUnderstood,
			Source:         SourceFallback,
		}
	}

	cmd := i.resolver.Resolve(ctx, normalized)
	action := cmd.Action
	if action == "" {
		action = ActionNone
	}
	params := cmd.Params
	if params == nil {
		params = map[string]any{}
	}
	response := cmd.Response
	if response == "" && action == ActionNone {
		response = MsgNotUnderstood
	}

	i.logger.Debug("utterance resolved by model",
		zap.String("utterance", utils.TruncateForLog(normalized, 200)),
		zap.String("action", action),
	)
	return Resolution{
		Utterance:      normalized,
		Action:         action,
		Params:         params,
		SpokenResponse: response,
		Source:         SourceModel,
	}
}
