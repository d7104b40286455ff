// Package memory provides an in-memory vector store.
// It backs unit tests and serves as the reference implementation of the
// similarity search semantics.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// entry is a stored vector with its insertion sequence number.
type entry struct {
	documentID string
	seq        int64
	driven.VectorEntry
}

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu         sync.RWMutex
	dimensions int
	nextSeq    int64
	entries    map[string][]entry
}

// NewVectorStore creates a new in-memory vector store with fixed
// dimensionality.
func NewVectorStore(dimensions int) (*VectorStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}
	return &VectorStore{
		dimensions: dimensions,
		entries:    make(map[string][]entry),
	}, nil
}

// Upsert atomically replaces all vectors for a document.
func (s *VectorStore) Upsert(_ context.Context, documentID string, entries []driven.VectorEntry) error {
	for _, e := range entries {
		if len(e.Embedding) != s.dimensions {
			return fmt.Errorf("%w: got %d, store has %d",
				domain.ErrDimensionMismatch, len(e.Embedding), s.dimensions)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]entry, len(entries))
	for i, e := range entries {
		s.nextSeq++
		stored[i] = entry{documentID: documentID, seq: s.nextSeq, VectorEntry: e}
	}
	s.entries[documentID] = stored
	return nil
}

// Search finds the k most similar entries to the query vector.
func (s *VectorStore) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, store has %d",
			domain.ErrDimensionMismatch, len(query), s.dimensions)
	}
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		hit driven.VectorHit
		seq int64
	}
	var all []scored
	for docID, entries := range s.entries {
		for _, e := range entries {
			all = append(all, scored{
				hit: driven.VectorHit{
					ChunkID:    e.ChunkID,
					DocumentID: docID,
					Content:    e.Content,
					Metadata:   e.Metadata,
					Similarity: normalisedCosine(query, e.Embedding),
				},
				seq: e.seq,
			})
		}
	}

	// Equal scores keep insertion order.
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].hit.Similarity != all[j].hit.Similarity {
			return all[i].hit.Similarity > all[j].hit.Similarity
		}
		return all[i].seq < all[j].seq
	})

	if k > len(all) {
		k = len(all)
	}
	hits := make([]driven.VectorHit, k)
	for i := 0; i < k; i++ {
		hits[i] = all[i].hit
	}
	return hits, nil
}

// Delete removes all vectors for a document. Unknown documents are a no-op.
func (s *VectorStore) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, documentID)
	return nil
}

// Count returns the total number of stored vectors.
func (s *VectorStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, entries := range s.entries {
		total += len(entries)
	}
	return total, nil
}

// Dimensions returns the vector size the store was created with.
func (s *VectorStore) Dimensions() int {
	return s.dimensions
}

// Close releases resources.
func (s *VectorStore) Close() error {
	return nil
}

// normalisedCosine maps cosine similarity from [-1, 1] to [0, 1].
// Zero vectors score 0.
func normalisedCosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}
