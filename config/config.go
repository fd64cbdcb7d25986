package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"libgenui_server/internal/llm"
	"libgenui_server/internal/store"
	"libgenui_server/internal/types"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string `mapstructure:"APP_ENV"`        // "production" switches gin to release mode

	// Model Configuration
	ModelProvider   string        `mapstructure:"MODEL_PROVIDER"`    // gemini, openai, anthropic, ollama
	ModelName       string        `mapstructure:"MODEL_NAME"`        // text profile model
	VisionModelName string        `mapstructure:"VISION_MODEL_NAME"` // multimodal profile model, defaults to MODEL_NAME
	MaxOutputTokens int           `mapstructure:"MAX_OUTPUT_TOKENS"`
	Temperature     float32       `mapstructure:"TEMPERATURE"`
	ModelTimeout    time.Duration `mapstructure:"MODEL_TIMEOUT"` // per call

	// Credentials
	GeminiAPIKey    string `mapstructure:"GEMINI_API_KEY"`
	OpenAIKey       string `mapstructure:"OPENAI_API_KEY"`
	AnthropicAPIKey string `mapstructure:"ANTHROPIC_API_KEY"`
	OllamaHost      string `mapstructure:"OLLAMA_HOST"`
	ModelHost       string `mapstructure:"MODEL_HOST"` // optional base URL override for openai/anthropic

	// Persistence
	StoreDriver        string `mapstructure:"STORE_DRIVER"` // memory, mongo, sqlite, mysql
	MongoURI           string `mapstructure:"MONGO_URI"`
	MongoDatabase      string `mapstructure:"MONGO_DATABASE"`
	SQLDSN             string `mapstructure:"SQL_DSN"`
	ArtifactCollection string `mapstructure:"ARTIFACT_COLLECTION"`
	ArtifactDocument   string `mapstructure:"ARTIFACT_DOCUMENT"`

	// Pipeline
	RequiredFiles string `mapstructure:"REQUIRED_FILES"` // comma separated
	RenderPreview bool   `mapstructure:"RENDER_PREVIEW"`

	// Logging
	LogFile      string `mapstructure:"LOG_FILE"`
	LogVerbosity int    `mapstructure:"LOG_VERBOSITY"`
}

var defaults = map[string]any{
	"SERVER_ADDRESS":      ":8080",
	"APP_ENV":             "development",
	"MODEL_PROVIDER":      "gemini",
	"MODEL_NAME":          "gemini-1.5-flash",
	"VISION_MODEL_NAME":   "",
	"MAX_OUTPUT_TOKENS":   8192,
	"TEMPERATURE":         0.0,
	"MODEL_TIMEOUT":       "2m",
	"GEMINI_API_KEY":      "",
	"OPENAI_API_KEY":      "",
	"ANTHROPIC_API_KEY":   "",
	"OLLAMA_HOST":         "",
	"MODEL_HOST":          "",
	"STORE_DRIVER":        store.DriverMemory,
	"MONGO_URI":           "",
	"MONGO_DATABASE":      "libgenui",
	"SQL_DSN":             "",
	"ARTIFACT_COLLECTION": store.DefaultCollection,
	"ARTIFACT_DOCUMENT":   store.DefaultDocument,
	"REQUIRED_FILES":      strings.Join(types.DefaultRequiredFiles, ","),
	"RENDER_PREVIEW":      true,
	"LOG_FILE":            "",
	"LOG_VERBOSITY":       0,
}

// LoadConfig reads configuration from config.yaml in path and environment
// variables, which take precedence.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)     // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
		klog.V(1).Info("config.yaml not found, relying on environment variables")
	} else {
		klog.Infof("Using configuration file: %s", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the store and pipeline settings every command needs.
// Model credentials are checked separately by ValidateModel.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case store.DriverMemory, store.DriverSQLite:
	case store.DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required for the mongo store")
		}
	case store.DriverMySQL:
		if c.SQLDSN == "" {
			return errors.New("SQL_DSN is required for the mysql store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if len(c.RequiredFileList()) == 0 {
		return errors.New("REQUIRED_FILES must name at least one file")
	}
	return nil
}

// ValidateModel checks the provider name and the credentials it needs. Only
// commands that talk to a model call it.
func (c Config) ValidateModel() error {
	switch c.ModelProvider {
	case "gemini", "google":
		if c.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	case "openai":
		if c.OpenAIKey == "" && c.ModelHost == "" {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic", "claude":
		if c.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "ollama":
	default:
		return fmt.Errorf("unknown MODEL_PROVIDER %q", c.ModelProvider)
	}
	return nil
}

// RequiredFileList splits REQUIRED_FILES.
func (c Config) RequiredFileList() []string {
	var out []string
	for _, name := range strings.Split(c.RequiredFiles, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

// LLM returns the model settings for the configured provider.
func (c Config) LLM() llm.Config {
	cfg := llm.Config{
		Provider:        c.ModelProvider,
		Model:           c.ModelName,
		VisionModel:     c.VisionModelName,
		Host:            c.ModelHost,
		MaxOutputTokens: c.MaxOutputTokens,
		Temperature:     c.Temperature,
		Timeout:         c.ModelTimeout,
	}
	switch c.ModelProvider {
	case "gemini", "google":
		cfg.APIKey = c.GeminiAPIKey
	case "openai":
		cfg.APIKey = c.OpenAIKey
	case "anthropic", "claude":
		cfg.APIKey = c.AnthropicAPIKey
	case "ollama":
		cfg.Host = c.OllamaHost
	}
	return cfg
}

func (c Config) Store() store.Config {
	return store.Config{
		Driver:        c.StoreDriver,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		SQLDSN:        c.SQLDSN,
	}
}
