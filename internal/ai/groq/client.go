// Package groq resolves voice commands with Groq-hosted models through the
// OpenAI-compatible chat completions endpoint.
package groq

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/ai"
	"github.com/spigell/nexus/internal/logger"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"

	defaultTemperature = 0.7
	defaultMaxTokens   = 256
)

type completionsAPI interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

type Config struct {
	APIKey  string `mapstructure:"api-key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base-url"`
}

// Generator implements ai.Generator with chat completions.
type Generator struct {
	completions completionsAPI
	model       string
	logger      *zap.Logger
}

var _ ai.Generator = (*Generator)(nil)

func NewGenerator(cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("groq api key is required")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)

	return newGenerator(&client.Chat.Completions, cfg.Model, log), nil
}

func newGenerator(api completionsAPI, model string, log *zap.Logger) *Generator {
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	return &Generator{
		completions: api,
		model:       model,
		logger:      logger.WithCommonFields(log, "groq", model),
	}
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

func (g *Generator) Generate(ctx context.Context, systemInstruction string, history []ai.Message, utterance string) (string, error) {
	if g == nil || g.completions == nil {
		return "", errors.New("groq generator is not initialized")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(systemInstruction))
	for _, msg := range history {
		switch msg.Role {
		case ai.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			messages = append(messages, openai.UserMessage(msg.Content))
		}
	}
	messages = append(messages, openai.UserMessage(utterance))

	resp, err := g.completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(g.model),
		Messages:    messages,
		Temperature: openai.Float(defaultTemperature),
		MaxTokens:   openai.Int(defaultMaxTokens),
		TopP:        openai.Float(1),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("groq api returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	logger.OrNop(g.logger).Debug("chat completion finished",
		zap.Int("messages", len(messages)),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)
	return content, nil
}
