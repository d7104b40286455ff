package driven

import (
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
)

// DocumentStore persists document metadata.
// Chunk payloads and embeddings live in the VectorStore.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	// Returns domain.ErrNotFound when the document does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns all documents, newest first.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// DeleteDocument removes a document record.
	// Returns domain.ErrNotFound when the document does not exist.
	DeleteDocument(ctx context.Context, id string) error

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}
