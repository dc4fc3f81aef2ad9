package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type EnvVars struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev"`
	Port   int    `envconfig:"PORT" default:"9090"`

	// anthropic, openai or ollama
	LLMProvider  string        `envconfig:"LLM_PROVIDER" default:"anthropic"`
	LLMApiKey    string        `envconfig:"LLM_API_KEY"`
	LLMBaseURL   string        `envconfig:"LLM_BASE_URL"`
	LLMModel     string        `envconfig:"LLM_MODEL"`
	LLMMaxTokens int           `envconfig:"LLM_MAX_TOKENS" default:"1000"`
	LLMTimeout   time.Duration `envconfig:"LLM_TIMEOUT" default:"30s"`

	// Provider specific keys, used when LLM_API_KEY is empty
	AnthropicApiKey string `envconfig:"ANTHROPIC_API_KEY"`
	OpenAIApiKey    string `envconfig:"OPENAI_API_KEY"`

	// Ollama (local LLM) configuration
	OllamaBaseURL string `envconfig:"OLLAMA_BASE_URL" default:"http://localhost:11434"`
	OllamaModel   string `envconfig:"OLLAMA_MODEL" default:"qwen3:0.6b"`

	GraphQLTimeout time.Duration `envconfig:"GRAPHQL_TIMEOUT" default:"20s"`
	Ranker         string        `envconfig:"EXPLORER_RANKER" default:"keyword"`
	DefinitionsDir string        `envconfig:"DEFINITIONS_DIR" default:"definitions"`

	// HTTP surface
	APIKey          string `envconfig:"API_KEY"`
	RateLimitPerMin int    `envconfig:"RATE_LIMIT_PER_MIN" default:"60"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadEnv reads an optional .env file from the working directory and then
// processes the environment into EnvVars.
func LoadEnv() (*EnvVars, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	var v EnvVars
	if err := envconfig.Process("", &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// APIKeyFor returns the key to use for the configured provider.
func (v *EnvVars) APIKeyFor() string {
	if v.LLMApiKey != "" {
		return v.LLMApiKey
	}
	switch v.LLMProvider {
	case "openai":
		return v.OpenAIApiKey
	case "anthropic":
		return v.AnthropicApiKey
	}
	return ""
}
