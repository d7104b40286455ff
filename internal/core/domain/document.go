package domain

import "time"

// Document represents an ingested piece of source content.
// It is the canonical metadata record after normalisation and chunking;
// the chunk payloads themselves live in the vector store.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Filename is the original file name, or the URL for web ingestion.
	Filename string

	// SourceURL is the originating URL for web ingestion. Empty for uploads.
	SourceURL string

	// ContentType is the declared content type (e.g., "application/pdf").
	ContentType string

	// Title is the human-readable title extracted during normalisation.
	Title string

	// Content is the full text after normalisation, before chunking.
	Content string

	// ChunkCount is the number of chunks produced at ingestion.
	ChunkCount int

	// Pages maps character offset ranges to page numbers.
	// Only populated for paginated formats (PDF).
	Pages []PageSpan

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last re-ingested.
	UpdatedAt time.Time
}

// PageSpan records which page a character offset range of the normalised
// content came from.
type PageSpan struct {
	// Page is the 1-based page number.
	Page int

	// Start is the inclusive start offset within Document.Content.
	Start int

	// End is the exclusive end offset within Document.Content.
	End int
}

// PageAt returns the page number containing the given content offset,
// or 0 when the document has no page information.
func (d *Document) PageAt(offset int) int {
	for _, span := range d.Pages {
		if offset >= span.Start && offset < span.End {
			return span.Page
		}
	}
	return 0
}

// Chunk represents a retrievable unit within a document.
// Chunks are immutable once written; re-ingesting a document replaces
// its chunk set wholesale.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// StartOffset is the inclusive start offset within the document content.
	StartOffset int

	// EndOffset is the exclusive end offset within the document content.
	EndOffset int

	// Embedding is the vector representation for similarity search.
	Embedding []float32

	// Metadata contains chunk-specific key-value pairs (source, page).
	Metadata map[string]any
}

// RawDocument represents opaque bytes handed to the ingestion pipeline,
// before normalisation.
type RawDocument struct {
	// Filename is the original file name, or the URL for web content.
	Filename string

	// SourceURL is the originating URL. Empty for uploads.
	SourceURL string

	// ContentType is the declared content type (e.g., "text/plain").
	ContentType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains caller-specific key-value pairs.
	Metadata map[string]any
}
