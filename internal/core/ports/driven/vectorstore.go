package driven

import "context"

// VectorStore persists chunk embeddings and provides similarity search.
// The store's dimensionality is fixed at creation; vectors of any other
// size are rejected with domain.ErrDimensionMismatch.
type VectorStore interface {
	// Upsert atomically replaces all vectors for a document.
	// Existing entries for the document are deleted and the new entries
	// inserted in a single transaction, so concurrent searches observe
	// either the old set or the new set, never a mix.
	Upsert(ctx context.Context, documentID string, entries []VectorEntry) error

	// Search finds the k most similar entries to the query vector.
	// Results are ordered by descending similarity; equal scores keep
	// insertion order.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Delete removes all vectors for a document.
	// Deleting an unknown document is a no-op.
	Delete(ctx context.Context, documentID string) error

	// Count returns the total number of stored vectors.
	Count(ctx context.Context) (int, error)

	// Dimensions returns the vector size the store was created with.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorEntry is a chunk payload stored alongside its embedding.
type VectorEntry struct {
	// ChunkID is the unique identifier for the chunk.
	ChunkID string

	// Content is the chunk text, stored for retrieval without a
	// second lookup.
	Content string

	// Embedding is the vector representation.
	Embedding []float32

	// Metadata carries provenance (source, page) persisted with the entry.
	Metadata map[string]any
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the document the chunk belongs to.
	DocumentID string

	// Content is the stored chunk text.
	Content string

	// Metadata is the stored chunk metadata.
	Metadata map[string]any

	// Similarity is the cosine similarity normalised to [0, 1].
	Similarity float64
}
