package services

import (
	"context"
	"fmt"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
	"github.com/positron-labs/positron/internal/core/ports/driving"
	"github.com/positron-labs/positron/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService manages ingested documents.
type DocumentService struct {
	docs     driven.DocumentStore
	vectors  driven.VectorStore
	sessions driven.SessionStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docs driven.DocumentStore,
	vectors driven.VectorStore,
	sessions driven.SessionStore,
) *DocumentService {
	return &DocumentService{
		docs:     docs,
		vectors:  vectors,
		sessions: sessions,
	}
}

// ListDocuments returns all documents, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	docs, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// DeleteDocument removes a document and all its vectors.
// Vectors are removed first so a metadata failure leaves no orphaned
// vectors behind.
func (s *DocumentService) DeleteDocument(ctx context.Context, id string) error {
	if _, err := s.docs.GetDocument(ctx, id); err != nil {
		return fmt.Errorf("get document: %w", err)
	}

	if err := s.vectors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete vectors: %w", err)
	}

	if err := s.docs.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	logger.Info("Deleted document %s", id)
	return nil
}

// Stats reports aggregate counts across the stores.
func (s *DocumentService) Stats(ctx context.Context) (*driving.Stats, error) {
	docCount, err := s.docs.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	chunkCount, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	sessionCount, err := s.sessions.CountSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	return &driving.Stats{
		Documents: docCount,
		Chunks:    chunkCount,
		Sessions:  sessionCount,
	}, nil
}
