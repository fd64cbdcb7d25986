package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libgenui_server/internal/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "gemini", cfg.ModelProvider)
	assert.Equal(t, 2*time.Minute, cfg.ModelTimeout)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, "items", cfg.ArtifactCollection)
	assert.Equal(t, "description-code", cfg.ArtifactDocument)
	assert.True(t, cfg.RenderPreview)
	assert.Equal(t, types.DefaultRequiredFiles, cfg.RequiredFileList())

	llmCfg := cfg.LLM()
	assert.Equal(t, "test-key", llmCfg.APIKey)
	assert.Equal(t, 8192, llmCfg.MaxOutputTokens)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "MODEL_PROVIDER: ollama\nMODEL_NAME: llama3.2-vision\nSTORE_DRIVER: sqlite\nREQUIRED_FILES: page.ts, page.html\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("OLLAMA_HOST", "http://ollama:11434")
	t.Setenv("RENDER_PREVIEW", "false")
	t.Setenv("MODEL_TIMEOUT", "45s")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2-vision", cfg.ModelName)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.False(t, cfg.RenderPreview)
	assert.Equal(t, 45*time.Second, cfg.ModelTimeout)
	assert.Equal(t, []string{"page.ts", "page.html"}, cfg.RequiredFileList())
	assert.Equal(t, "http://ollama:11434", cfg.LLM().Host)
	assert.Equal(t, "sqlite", cfg.Store().Driver)
}

func TestLoadConfigWithoutModelCredentials(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.ModelProvider)
	assert.Error(t, cfg.ValidateModel())
}

func TestValidate(t *testing.T) {
	base := Config{ModelProvider: "bard", StoreDriver: "memory", RequiredFiles: "a.ts"}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown store", mutate: func(c *Config) { c.StoreDriver = "redis" }},
		{name: "mongo without uri", mutate: func(c *Config) { c.StoreDriver = "mongo" }},
		{name: "mysql without dsn", mutate: func(c *Config) { c.StoreDriver = "mysql" }},
		{name: "no required files", mutate: func(c *Config) { c.RequiredFiles = " , " }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestValidateModel(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "ollama needs no key", cfg: Config{ModelProvider: "ollama"}},
		{name: "gemini with key", cfg: Config{ModelProvider: "gemini", GeminiAPIKey: "k"}},
		{name: "openai behind a custom host", cfg: Config{ModelProvider: "openai", ModelHost: "http://llm:8000/v1"}},
		{name: "unknown provider", cfg: Config{ModelProvider: "bard"}, wantErr: true},
		{name: "gemini without key", cfg: Config{ModelProvider: "gemini"}, wantErr: true},
		{name: "openai without key", cfg: Config{ModelProvider: "openai"}, wantErr: true},
		{name: "anthropic without key", cfg: Config{ModelProvider: "anthropic"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.ValidateModel()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
