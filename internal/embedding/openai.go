package embedding

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// openAIBatchLimit is the most inputs one embeddings request accepts
const openAIBatchLimit = 2048

// OpenAIProvider implements Provider using OpenAI's API
type OpenAIProvider struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// NewOpenAIProvider creates a new OpenAI embedding provider
func NewOpenAIProvider(apiKey, model string, dimensions int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	embModel := openai.SmallEmbedding3
	if model != "" {
		embModel = openai.EmbeddingModel(model)
	}
	if dimensions == 0 {
		dimensions = 768
	}

	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		model:      embModel,
		dimensions: dimensions,
	}, nil
}

// Embed generates an embedding for a single text
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts in input order
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))

	for start := 0; start < len(texts); start += openAIBatchLimit {
		end := min(start+openAIBatchLimit, len(texts))

		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input:      texts[start:end],
			Model:      p.model,
			Dimensions: p.dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embeddings: %w", err)
		}

		for _, data := range resp.Data {
			i := start + data.Index
			if data.Index < 0 || i >= end {
				return nil, fmt.Errorf("openai returned embedding index %d outside batch", data.Index)
			}
			embeddings[i] = data.Embedding
		}
	}

	for i, e := range embeddings {
		if e == nil {
			return nil, fmt.Errorf("openai returned no embedding for text %d", i)
		}
	}
	return embeddings, nil
}

// Dimensions returns the configured vector size
func (p *OpenAIProvider) Dimensions() int {
	return p.dimensions
}

// Close releases resources
func (p *OpenAIProvider) Close() error {
	return nil
}
