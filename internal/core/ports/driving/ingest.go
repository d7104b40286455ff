package driving

import (
	"context"

	"github.com/positron-labs/positron/internal/core/domain"
)

// IngestService turns raw content into indexed, searchable documents.
type IngestService interface {
	// IngestFile ingests a single file's content.
	// Re-ingesting the same document ID replaces its chunks atomically.
	IngestFile(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error)

	// IngestURL fetches a web page and ingests its text. When
	// extractLinkedPDFs is set, PDFs linked from the page are ingested
	// too (up to a fixed cap). Returns every document created, page
	// first.
	IngestURL(ctx context.Context, url string, extractLinkedPDFs bool) ([]domain.Document, error)
}
