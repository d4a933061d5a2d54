// Package config loads environment-provided settings for the mailrag CLI.
// A .env file in the working directory is honoured when present; the
// process environment always wins. Validation runs at startup, before
// any network call is attempted.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/custodia-labs/mailrag-cli/internal/core/domain"
)

// Config holds every runtime setting.
type Config struct {
	// Gmail credential files.
	CredentialsPath string `env:"MAILRAG_CREDENTIALS_PATH" envDefault:"credentials.json"`
	TokenPath       string `env:"MAILRAG_TOKEN_PATH" envDefault:"token.json"`

	// Embedding and generation server (Ollama).
	OllamaURL      string `env:"MAILRAG_OLLAMA_URL" envDefault:"http://localhost:11434"`
	EmbedModel     string `env:"MAILRAG_EMBED_MODEL" envDefault:"nomic-embed-text"`
	EmbedDimension int    `env:"MAILRAG_EMBED_DIMENSION" envDefault:"768"`
	LLMModel       string `env:"MAILRAG_LLM_MODEL" envDefault:"llama3.2"`

	// Vector store.
	PineconeAPIKey   string `env:"MAILRAG_PINECONE_API_KEY"`
	PineconeEndpoint string `env:"MAILRAG_PINECONE_ENDPOINT"`
	PineconeIndex    string `env:"MAILRAG_PINECONE_INDEX" envDefault:"mailrag-index"`

	// Pipeline tuning.
	ChunkMaxTokens int           `env:"MAILRAG_CHUNK_MAX_TOKENS" envDefault:"400"`
	TopK           int           `env:"MAILRAG_TOP_K" envDefault:"5"`
	PromptBudget   int           `env:"MAILRAG_PROMPT_BUDGET" envDefault:"3000"`
	RequestTimeout time.Duration `env:"MAILRAG_TIMEOUT" envDefault:"30s"`

	// RetryAttempts controls the optional retry decorator around embedding
	// calls. Zero disables retries entirely (the baseline design).
	RetryAttempts int `env:"MAILRAG_RETRY_ATTEMPTS" envDefault:"0"`
}

// Load reads .env (if present), parses the environment and validates.
func Load() (*Config, error) {
	// Missing .env is fine; explicit environment is the source of truth.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required settings and value ranges.
func (c *Config) Validate() error {
	if c.PineconeAPIKey == "" {
		return fmt.Errorf("%w: MAILRAG_PINECONE_API_KEY is required", domain.ErrConfig)
	}
	if c.PineconeEndpoint == "" {
		return fmt.Errorf("%w: MAILRAG_PINECONE_ENDPOINT is required", domain.ErrConfig)
	}
	if c.CredentialsPath == "" {
		return fmt.Errorf("%w: MAILRAG_CREDENTIALS_PATH must not be empty", domain.ErrConfig)
	}
	if c.EmbedDimension <= 0 {
		return fmt.Errorf("%w: MAILRAG_EMBED_DIMENSION must be positive, got %d", domain.ErrConfig, c.EmbedDimension)
	}
	if c.ChunkMaxTokens <= 0 {
		return fmt.Errorf("%w: MAILRAG_CHUNK_MAX_TOKENS must be positive, got %d", domain.ErrConfig, c.ChunkMaxTokens)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: MAILRAG_TOP_K must be positive, got %d", domain.ErrConfig, c.TopK)
	}
	if c.PromptBudget <= 0 {
		return fmt.Errorf("%w: MAILRAG_PROMPT_BUDGET must be positive, got %d", domain.ErrConfig, c.PromptBudget)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: MAILRAG_TIMEOUT must be positive, got %s", domain.ErrConfig, c.RequestTimeout)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("%w: MAILRAG_RETRY_ATTEMPTS must not be negative, got %d", domain.ErrConfig, c.RetryAttempts)
	}
	return nil
}
