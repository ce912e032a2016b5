package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/nexus/internal/logger"
)

const (
	geminiProvider     = "gemini"
	defaultGeminiModel = "gemini-embedding-001"
)

type geminiEmbedAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiConfig configures the Gemini embedder.
type GeminiConfig struct {
	APIKey    string
	Model     string
	Dimension int
}

// Gemini embeds text through the Gemini API.
type Gemini struct {
	api    geminiEmbedAPI
	model  string
	dim    int
	logger *zap.Logger
}

// NewGemini creates a Gemini embedder backed by a genai client.
func NewGemini(ctx context.Context, cfg GeminiConfig, log *zap.Logger) (*Gemini, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGemini(client.Models, cfg, log), nil
}

func newGemini(api geminiEmbedAPI, cfg GeminiConfig, log *zap.Logger) *Gemini {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{
		api:    api,
		model:  model,
		dim:    dimensionOrDefault(cfg.Dimension),
		logger: logger.WithCommonFields(log, geminiProvider, model),
	}
}

func (g *Gemini) Dimension() int { return g.dim }

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	if isBlank(text) {
		return Zero(g.dim), nil
	}

	dim := int32(g.dim)
	resp, err := g.api.EmbedContent(ctx, g.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType:             "SEMANTIC_SIMILARITY",
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, errors.New("gemini api returned no embeddings")
	}

	values := resp.Embeddings[0].Values
	if len(values) != g.dim {
		return nil, fmt.Errorf("gemini api returned %d dimensions, expected %d", len(values), g.dim)
	}

	g.logger.Debug("text embedded", zap.Int("chars", len(text)), zap.Int("dimension", len(values)))
	return values, nil
}
