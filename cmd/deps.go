package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/nexus/internal/ai"
	"github.com/spigell/nexus/internal/ai/gemini"
	"github.com/spigell/nexus/internal/ai/groq"
	"github.com/spigell/nexus/internal/embedding"
	"github.com/spigell/nexus/internal/jobs"
	"github.com/spigell/nexus/internal/logger"
	"github.com/spigell/nexus/internal/matching"
	"github.com/spigell/nexus/internal/profile"
	"github.com/spigell/nexus/internal/secrets"
	"github.com/spigell/nexus/internal/settings"
	"github.com/spigell/nexus/internal/store"
)

const (
	providerGemini  = "gemini"
	providerGroq    = "groq"
	providerOpenAI  = "openai"
	providerHashing = "hashing"
	providerNone    = "none"
)

// env holds everything a command needs: logger, config and the persisted documents.
type env struct {
	logger   *zap.Logger
	config   *Config
	backend  store.Backend
	profiles *store.Document[profile.Profile]
	settings *store.Document[settings.Settings]
}

// setup builds the logger, reads the config and opens the state backend.
// Failures are fatal as in every other command entry point.
func setup(ctx context.Context) *env {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	backend, err := openBackend(ctx, config, l)
	if err != nil {
		l.Fatal("opening the state backend", zap.Error(err))
	}

	return &env{
		logger:   l,
		config:   config,
		backend:  backend,
		profiles: store.NewDocument(backend, profile.StorageKey, profile.Default, l),
		settings: store.NewDocument(backend, settings.StorageKey, settings.Default, l),
	}
}

func openBackend(ctx context.Context, config *Config, l *zap.Logger) (store.Backend, error) {
	kind := strings.ToLower(strings.TrimSpace(config.Store.Backend))
	switch kind {
	case "", "file":
		return store.NewFile(config.StateDir)
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		// The state directory keeps documents while Redis is unreachable.
		fallback, err := store.NewFile(config.StateDir)
		if err != nil {
			return nil, err
		}
		return store.NewRedis(ctx, config.Store.Redis, fallback, l), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", config.Store.Backend)
	}
}

func loadCatalog(path string) (*jobs.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return jobs.Default()
	}
	return jobs.LoadFile(path)
}

// apiKey resolves the key of a provider from its key file, the inline value
// or the <PROVIDER>_API_KEY environment variable.
func apiKey(provider string, pc *ProviderConfig) (string, error) {
	src := secrets.Source{
		Name: provider + " api key",
		Env:  strings.ToUpper(provider) + "_API_KEY",
	}
	if pc != nil {
		src.File = pc.APIKeyFile
		src.Value = pc.APIKey
	}
	return secrets.Load(src)
}

func hasKey(provider string, pc *ProviderConfig) bool {
	_, err := apiKey(provider, pc)
	return err == nil
}

func orEmpty(pc *ProviderConfig) ProviderConfig {
	if pc == nil {
		return ProviderConfig{}
	}
	return *pc
}

// newEmbedder picks the embedding provider. The result is always memoized.
func newEmbedder(ctx context.Context, config *Config, l *zap.Logger) (embedding.Embedder, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Matching.Embedder))
	if provider == "" {
		switch {
		case hasKey(providerGemini, config.AI.Gemini):
			provider = providerGemini
		case hasKey(providerOpenAI, config.AI.OpenAI):
			provider = providerOpenAI
		default:
			provider = providerHashing
		}
	}

	dim := config.Matching.Dimension
	var next embedding.Embedder
	switch provider {
	case providerGemini:
		key, err := apiKey(providerGemini, config.AI.Gemini)
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		g, err := embedding.NewGemini(ctx, embedding.GeminiConfig{
			APIKey:    key,
			Model:     orEmpty(config.AI.Gemini).EmbeddingModel,
			Dimension: dim,
		}, l)
		if err != nil {
			return nil, err
		}
		next = g
	case providerOpenAI:
		key, err := apiKey(providerOpenAI, config.AI.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY_FILE)", err)
		}
		pc := orEmpty(config.AI.OpenAI)
		o, err := embedding.NewOpenAI(embedding.OpenAIConfig{
			APIKey:    key,
			Model:     pc.EmbeddingModel,
			BaseURL:   pc.BaseURL,
			Dimension: dim,
		}, l)
		if err != nil {
			return nil, err
		}
		next = o
	case providerHashing:
		l.Info("using the local hashing embedder", zap.String("hint", "configure a gemini or openai api key for semantic scores"))
		next = embedding.NewHashing(dim)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", config.Matching.Embedder)
	}

	return embedding.NewCached(next), nil
}

// newMatcher wires the embedder, engine and matcher for items.
func newMatcher(ctx context.Context, e *env, items []*jobs.Job) (*matching.Matcher, error) {
	embedder, err := newEmbedder(ctx, e.config, e.logger)
	if err != nil {
		return nil, err
	}

	engine := matching.NewEngine(embedder,
		matching.WithConcurrency(e.config.Matching.Concurrency),
		matching.WithLogger(e.logger),
	)
	return matching.NewMatcher(engine, items, e.logger), nil
}

// newGenerator returns the model behind free-form voice commands, or nil
// when no provider is configured.
func newGenerator(ctx context.Context, config *Config, l *zap.Logger) (ai.Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Voice.Provider))
	if provider == "" {
		switch {
		case hasKey(providerGroq, config.AI.Groq):
			provider = providerGroq
		case hasKey(providerGemini, config.AI.Gemini):
			provider = providerGemini
		default:
			provider = providerNone
		}
	}

	switch provider {
	case providerNone:
		return nil, nil
	case providerGroq:
		key, err := apiKey(providerGroq, config.AI.Groq)
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.groq.api-key-file or GROQ_API_KEY_FILE)", err)
		}
		pc := orEmpty(config.AI.Groq)
		g, err := groq.NewGenerator(groq.Config{APIKey: key, Model: pc.Model, BaseURL: pc.BaseURL}, l)
		if err != nil {
			return nil, err
		}
		return g, nil
	case providerGemini:
		key, err := apiKey(providerGemini, config.AI.Gemini)
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
		}
		pc := orEmpty(config.AI.Gemini)
		g, err := gemini.NewGenerator(ctx, gemini.Config{APIKey: key, Model: pc.Model, MaxRetries: pc.MaxRetries}, l)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported voice provider: %s", config.Voice.Provider)
	}
}

func (e *env) close() {
	if closer, ok := e.backend.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			e.logger.Warn("closing the state backend", zap.Error(err))
		}
	}
	_ = e.logger.Sync()
}
