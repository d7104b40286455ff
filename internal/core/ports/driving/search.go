package driving

import (
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
)

// SearchService provides semantic search over ingested documents.
type SearchService interface {
	// Search embeds the query and returns the topK most similar chunks.
	// topK is clamped to the number of stored chunks; an empty store
	// yields an empty result.
	Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error)
}
