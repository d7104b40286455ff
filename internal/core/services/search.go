package services

import (
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driving"
	"github.com/positron-labs/positron/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultSearchTopK is used when the caller does not specify a result count.
const DefaultSearchTopK = 5

// SearchService provides semantic search over ingested documents.
type SearchService struct {
	retriever *Retriever
}

// NewSearchService creates a new search service.
func NewSearchService(retriever *Retriever) *SearchService {
	return &SearchService{retriever: retriever}
}

// Search embeds the query and returns the topK most similar chunks.
func (s *SearchService) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	if topK <= 0 {
		topK = DefaultSearchTopK
	}

	results, err := s.retriever.Retrieve(ctx, query, topK)
	if err != nil {
		return nil, err
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}
