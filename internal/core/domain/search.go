package domain

// SearchResult represents a single similarity search hit.
type SearchResult struct {
	// DocumentID is the document the matched chunk belongs to.
	DocumentID string

	// ChunkID is the matched chunk.
	ChunkID string

	// Content is the chunk text.
	Content string

	// Score is the normalised similarity in [0, 1].
	Score float64

	// Source is the display name of the originating document.
	Source string

	// Page is the page the chunk starts on, or 0 when the
	// document has no page structure.
	Page int

	// Metadata carries chunk metadata stored at ingestion time.
	Metadata map[string]any
}
