package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// EmbedderConfig represents the configuration for the embedding client.
type EmbedderConfig struct {
	Model     string
	BatchSize int
	APIKey    string
	BaseURL   string
}

// Embedder computes OpenAI embeddings for chunk texts and queries. It is
// safe for concurrent use once constructed and is meant to be built once
// at process start.
type Embedder struct {
	config EmbedderConfig
	impl   *embeddings.EmbedderImpl
}

// NewEmbedderWithConfig creates a new Embedder with the given configuration.
func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Model == "" {
		config.Model = "text-embedding-ada-002"
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}

	opts := []openai.Option{openai.WithEmbeddingModel(config.Model)}
	if config.APIKey != "" {
		opts = append(opts, openai.WithToken(config.APIKey))
	}
	if config.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(config.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding client: %w", err)
	}

	impl, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(config.BatchSize),
		embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	return &Embedder{config: config, impl: impl}, nil
}

// EmbedDocuments embeds a batch of chunk texts.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("no texts provided for embedding")
	}
	return e.impl.EmbedDocuments(ctx, texts)
}

// EmbedQuery embeds a single free-text query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.impl.EmbedQuery(ctx, text)
}
