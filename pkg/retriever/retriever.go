package retriever

import (
	"context"
	"fmt"

	"wahlkompass/internal/models"
	"wahlkompass/internal/types"
)

// DefaultTopK trades recall against prompt size and model cost.
const DefaultTopK = 15

// Retriever answers free-text queries with the most similar indexed
// chunks, metadata included. Constructed once at process start; the
// loaded index and embedding client are reused across queries.
type Retriever struct {
	embedder types.Embedder
	store    types.VectorStore
	topK     int
}

func New(embedder types.Embedder, store types.VectorStore, topK int) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("vector store cannot be nil")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, store: store, topK: topK}, nil
}

// Retrieve embeds the query and returns its top-k nearest chunks in
// similarity order.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.Chunk, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}

	embedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := r.store.Search(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}

	return chunks, nil
}
