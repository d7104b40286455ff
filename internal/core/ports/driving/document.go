package driving

import (
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
)

// DocumentService manages ingested documents.
type DocumentService interface {
	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// DeleteDocument removes a document and all its vectors.
	DeleteDocument(ctx context.Context, id string) error

	// Stats reports aggregate counts across the stores.
	Stats(ctx context.Context) (*Stats, error)
}

// Stats summarises the state of the knowledge base.
type Stats struct {
	// Documents is the number of ingested documents.
	Documents int

	// Chunks is the number of stored vector entries.
	Chunks int

	// Sessions is the number of conversation sessions.
	Sessions int
}
