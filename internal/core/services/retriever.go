package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
	"github.com/positron-labs/positron/internal/logger"
)

// Retriever embeds a query and finds the most similar stored chunks.
// It is shared by the search and chat services.
type Retriever struct {
	embedder driven.EmbeddingProvider
	vectors  driven.VectorStore
}

// NewRetriever creates a new retriever.
func NewRetriever(embedder driven.EmbeddingProvider, vectors driven.VectorStore) *Retriever {
	return &Retriever{
		embedder: embedder,
		vectors:  vectors,
	}
}

// Retrieve returns up to topK chunks most similar to the query.
// topK is clamped to the number of stored chunks; an empty store yields
// an empty result without calling the embedding provider.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.SearchResult{}, nil
	}
	if topK <= 0 {
		return []domain.SearchResult{}, nil
	}

	count, err := r.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}
	if count == 0 {
		logger.Debug("Vector store is empty, returning no results")
		return []domain.SearchResult{}, nil
	}
	if topK > count {
		logger.Debug("Clamping topK from %d to %d stored chunks", topK, count)
		topK = count
	}

	embedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := r.vectors.Search(ctx, embedding, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Vector search: %d hits", len(hits))

	results := make([]domain.SearchResult, len(hits))
	for i, hit := range hits {
		results[i] = domain.SearchResult{
			DocumentID: hit.DocumentID,
			ChunkID:    hit.ChunkID,
			Content:    hit.Content,
			Score:      hit.Similarity,
			Source:     metadataString(hit.Metadata, "source"),
			Page:       metadataInt(hit.Metadata, "page"),
			Metadata:   hit.Metadata,
		}
	}

	return results, nil
}

// metadataString reads a string metadata value, tolerating absence.
func metadataString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

// metadataInt reads an integer metadata value. JSON round-trips store
// numbers as float64, so both representations are accepted.
func metadataInt(meta map[string]any, key string) int {
	if meta == nil {
		return 0
	}
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
