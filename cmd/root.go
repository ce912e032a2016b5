package cmd

import (
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/nexus/internal/store"
)

const (
	app = "nexus"
)

type Config struct {
	StateDir string          `mapstructure:"state-dir"`
	Catalog  string          `mapstructure:"catalog"`
	Store    *StoreConfig    `mapstructure:"store"`
	Matching *MatchingConfig `mapstructure:"matching"`
	Voice    *VoiceConfig    `mapstructure:"voice"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type StoreConfig struct {
	// Backend is one of file, redis or memory.
	Backend string            `mapstructure:"backend"`
	Redis   store.RedisConfig `mapstructure:"redis"`
}

type MatchingConfig struct {
	// Embedder is one of gemini, openai or hashing. Empty picks the first
	// provider with a configured key and falls back to hashing.
	Embedder          string   `mapstructure:"embedder"`
	Dimension         int      `mapstructure:"dimension"`
	Concurrency       int      `mapstructure:"concurrency"`
	MinScore          int      `mapstructure:"min-score"`
	ExcludedCompanies []string `mapstructure:"excluded-companies"`
}

type VoiceConfig struct {
	// Provider resolves utterances the pattern table does not know: groq,
	// gemini or none. Empty picks the first provider with a configured key.
	Provider     string        `mapstructure:"provider"`
	RestartDelay time.Duration `mapstructure:"restart-delay"`
	HistoryLimit int           `mapstructure:"history-limit"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

type AIConfig struct {
	Gemini *ProviderConfig `mapstructure:"gemini"`
	Groq   *ProviderConfig `mapstructure:"groq"`
	OpenAI *ProviderConfig `mapstructure:"openai"`
}

type ProviderConfig struct {
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	BaseURL        string `mapstructure:"base-url"`
	MaxRetries     int    `mapstructure:"max-retries"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "nexus matches jobs to a candidate profile and drives the page by voice commands",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"state-dir":              "NEXUS_STATE_DIR",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
		"ai.groq.api-key-file":   "GROQ_API_KEY_FILE",
		"ai.openai.api-key-file": "OPENAI_API_KEY_FILE",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	viper.SetDefault("state-dir", ".nexus")
	viper.SetDefault("store.backend", "file")
	viper.SetDefault("matching.concurrency", 4)
	viper.SetDefault("voice.restart-delay", "300ms")
	viper.SetDefault("voice.history-limit", 10)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is nexus.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A missing .env is fine, secrets may come from the config or the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}

	// Without an explicit --config every setting has a default.
	var notFound viper.ConfigFileNotFoundError
	if cfgFile == "" && errors.As(err, &notFound) {
		return
	}

	// We can't proceed if the config file parsed with error.
	log.Fatal(err)
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Store == nil {
		config.Store = &StoreConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}
	if config.Voice == nil {
		config.Voice = &VoiceConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}

	return config, nil
}
