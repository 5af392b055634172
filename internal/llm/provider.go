// Package llm wraps the chat completion APIs used by the llm prediction engine.
package llm

import (
	"context"
	"fmt"

	"github.com/Kavirubc/gh-labeler/internal/config"
)

const (
	defaultMaxTokens   = 512
	defaultTemperature = 0.1
)

// Provider defines the interface for LLM chat completion
type Provider interface {
	// CompleteJSON returns the model's answer to prompt, asking the
	// model for a JSON object.
	CompleteJSON(ctx context.Context, system, prompt string) (string, error)
	Close() error
}

// NewProvider creates the provider named in cfg
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model)
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", cfg.Provider)
	}
}
