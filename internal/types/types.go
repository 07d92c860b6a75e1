package types

import (
	"context"

	"wahlkompass/internal/models"
)

// Embedder computes vector representations for chunk texts and queries.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore persists the chunk index and answers similarity searches.
// Rebuild replaces the published index wholesale; there is no incremental
// upsert path.
type VectorStore interface {
	Rebuild(ctx context.Context, chunks []models.Chunk, embeddings [][]float32) error
	Search(ctx context.Context, embedding []float32, limit int) ([]models.Chunk, error)
	Ready(ctx context.Context) error
	Close()
}

// Retriever returns the indexed chunks most similar to a free-text query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]models.Chunk, error)
}

// Analyzer runs the full retrieval-augmented analysis for one statement.
type Analyzer interface {
	Analyze(ctx context.Context, statement string) (models.AnalysisResult, error)
}
