package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/logger"
)

const (
	openAIProvider     = "openai"
	defaultOpenAIModel = openai.EmbeddingModelTextEmbedding3Small
)

type openAIEmbeddingsAPI interface {
	New(ctx context.Context, body openai.EmbeddingNewParams, opts ...option.RequestOption) (*openai.CreateEmbeddingResponse, error)
}

// OpenAIConfig configures the OpenAI embedder.
type OpenAIConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Dimension int
}

// OpenAI embeds text through the OpenAI embeddings endpoint.
type OpenAI struct {
	api    openAIEmbeddingsAPI
	model  string
	dim    int
	logger *zap.Logger
}

func NewOpenAI(cfg OpenAIConfig, log *zap.Logger) (*OpenAI, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	client := openai.NewClient(opts...)

	return newOpenAI(&client.Embeddings, cfg, log), nil
}

func newOpenAI(api openAIEmbeddingsAPI, cfg OpenAIConfig, log *zap.Logger) *OpenAI {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = string(defaultOpenAIModel)
	}
	return &OpenAI{
		api:    api,
		model:  model,
		dim:    dimensionOrDefault(cfg.Dimension),
		logger: logger.WithCommonFields(log, openAIProvider, model),
	}
}

func (o *OpenAI) Dimension() int { return o.dim }

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	if isBlank(text) {
		return Zero(o.dim), nil
	}

	resp, err := o.api.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model:      openai.EmbeddingModel(o.model),
		Dimensions: openai.Int(int64(o.dim)),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, errors.New("openai api returned no embeddings")
	}

	values := resp.Data[0].Embedding
	if len(values) != o.dim {
		return nil, fmt.Errorf("openai api returned %d dimensions, expected %d", len(values), o.dim)
	}

	vec := make([]float32, len(values))
	for i, v := range values {
		vec[i] = float32(v)
	}

	o.logger.Debug("text embedded", zap.Int("chars", len(text)), zap.Int("dimension", len(vec)))
	return vec, nil
}
