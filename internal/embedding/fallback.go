package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Kavirubc/gh-labeler/internal/config"
)

// FallbackProvider wraps primary and fallback providers
type FallbackProvider struct {
	primary  Provider
	fallback Provider
}

// NewFallbackProvider creates a provider with primary and optional fallback
func NewFallbackProvider(cfg *config.EmbeddingConfig) (*FallbackProvider, error) {
	primary, err := createProvider(&cfg.Primary)
	if err != nil {
		return nil, fmt.Errorf("failed to create primary provider: %w", err)
	}

	var fallback Provider
	if cfg.Fallback.Provider != "" && cfg.Fallback.APIKey != "" {
		if cfg.Fallback.Dimensions != cfg.Primary.Dimensions {
			slog.Warn("ignoring embedding fallback with different dimensions",
				"primary", cfg.Primary.Dimensions, "fallback", cfg.Fallback.Dimensions)
		} else if fallback, err = createProvider(&cfg.Fallback); err != nil {
			slog.Warn("failed to create fallback embedding provider", "error", err)
			fallback = nil
		}
	}

	return newFallbackProvider(primary, fallback), nil
}

func newFallbackProvider(primary, fallback Provider) *FallbackProvider {
	return &FallbackProvider{primary: primary, fallback: fallback}
}

// createProvider creates a provider based on config
func createProvider(cfg *config.ProviderConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiProvider(cfg.APIKey, cfg.Model, cfg.Dimensions)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.Dimensions)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

// Embed generates an embedding with fallback on failure
func (p *FallbackProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embedding, err := p.primary.Embed(ctx, text)
	if err == nil {
		return embedding, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("primary embedding failed (no fallback): %w", err)
	}

	slog.Warn("primary embedding failed, trying fallback", "error", err)
	return p.fallback.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts with fallback
func (p *FallbackProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := p.primary.EmbedBatch(ctx, texts)
	if err == nil {
		return embeddings, nil
	}

	if p.fallback == nil {
		return nil, fmt.Errorf("primary embedding failed (no fallback): %w", err)
	}

	slog.Warn("primary batch embedding failed, trying fallback", "error", err, "texts", len(texts))
	return p.fallback.EmbedBatch(ctx, texts)
}

// Dimensions returns the vector size of the primary provider
func (p *FallbackProvider) Dimensions() int {
	return p.primary.Dimensions()
}

// Close releases resources
func (p *FallbackProvider) Close() error {
	err := p.primary.Close()
	if p.fallback != nil {
		err = errors.Join(err, p.fallback.Close())
	}
	return err
}
