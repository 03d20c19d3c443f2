// Package chat provides chat-completion clients for OpenAI-compatible APIs
// and Ollama.
package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

var (
	// ErrMissingAPIKey is returned when the openai provider has no MOODBEATS_LLM_API_KEY.
	ErrMissingAPIKey = errors.New("missing MOODBEATS_LLM_API_KEY environment variable")

	// ErrUnknownProvider is returned for a provider other than openai or ollama.
	ErrUnknownProvider = errors.New("unknown LLM provider")
)

// Config holds chat client configuration.
type Config struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
}

// ConfigFromEnv reads chat configuration from the MOODBEATS_LLM_* environment
// variables. The provider defaults to openai. The result is not validated;
// New does that when a client is built.
func ConfigFromEnv() Config {
	cfg := Config{
		Provider: strings.ToLower(strings.TrimSpace(os.Getenv("MOODBEATS_LLM_PROVIDER"))),
		BaseURL:  strings.TrimSpace(os.Getenv("MOODBEATS_LLM_BASE_URL")),
		APIKey:   strings.TrimSpace(os.Getenv("MOODBEATS_LLM_API_KEY")),
		Model:    strings.TrimSpace(os.Getenv("MOODBEATS_LLM_MODEL")),
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}
	return cfg
}

// Validate checks the provider and, for openai, the API key.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.APIKey == "" {
			return ErrMissingAPIKey
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider)
	}
	return nil
}

// Completer is satisfied by every client in this package.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// New returns the client for cfg.Provider.
func New(cfg *Config) (Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ProviderOllama:
		return NewOllamaClient(cfg.BaseURL, cfg.Model), nil
	default:
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Model), nil
	}
}
