// Package sqlite provides a SQLite-backed vector store.
//
// Embeddings are stored as little-endian float32 blobs and searched by
// brute-force cosine similarity. This keeps the store dependency-free
// and exact; at the single-user scale the application targets, a scan
// over a few thousand vectors is well under a millisecond.
//
// The store's dimensionality is fixed at creation and recorded in a
// meta table. Reopening with a different dimensionality fails with
// domain.ErrDimensionMismatch, which surfaces embedding model changes
// before any vectors are corrupted.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// VectorStore is a SQLite-backed implementation of driven.VectorStore.
type VectorStore struct {
	db         *sql.DB
	path       string
	dimensions int
}

// NewVectorStore opens or creates a vector store at the specified data
// directory. If dataDir is empty, defaults to ~/.positron/data/vectors.db.
func NewVectorStore(dataDir string, dimensions int) (*VectorStore, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("%w: dimensions must be positive", domain.ErrInvalidInput)
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".positron", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "vectors.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &VectorStore{
		db:         db,
		path:       dbPath,
		dimensions: dimensions,
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// init creates the schema and verifies the stored dimensionality.
func (s *VectorStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS vectors (
			chunk_id TEXT PRIMARY KEY,
			document_id TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT 'null',
			embedding BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_vectors_document_id ON vectors (document_id);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	var stored int
	row := s.db.QueryRow("SELECT value FROM meta WHERE key = 'dimensions'")
	switch err := row.Scan(&stored); {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.Exec("INSERT INTO meta (key, value) VALUES ('dimensions', ?)", s.dimensions)
		if err != nil {
			return fmt.Errorf("recording dimensions: %w", err)
		}
	case err != nil:
		return fmt.Errorf("reading dimensions: %w", err)
	case stored != s.dimensions:
		return fmt.Errorf("%w: store has %d, requested %d",
			domain.ErrDimensionMismatch, stored, s.dimensions)
	}

	return nil
}

// Close closes the database connection.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *VectorStore) Path() string {
	return s.path
}

// Dimensions returns the vector size the store was created with.
func (s *VectorStore) Dimensions() int {
	return s.dimensions
}

// Upsert atomically replaces all vectors for a document.
// Delete and insert run in one transaction, so concurrent searches see
// either the old set or the new set.
func (s *VectorStore) Upsert(ctx context.Context, documentID string, entries []driven.VectorEntry) error {
	for _, e := range entries {
		if len(e.Embedding) != s.dimensions {
			return fmt.Errorf("%w: got %d, store has %d",
				domain.ErrDimensionMismatch, len(e.Embedding), s.dimensions)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.ExecContext(ctx, "DELETE FROM vectors WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting old vectors: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (chunk_id, document_id, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		metadataJSON, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		blob := float32SliceToBytes(e.Embedding)
		if _, err := stmt.ExecContext(ctx, e.ChunkID, documentID, e.Content, string(metadataJSON), blob); err != nil {
			return fmt.Errorf("inserting vector %s: %w", e.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Search finds the k most similar entries to the query vector by scanning
// all stored vectors. Equal scores keep insertion order via rowid.
func (s *VectorStore) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: got %d, store has %d",
			domain.ErrDimensionMismatch, len(query), s.dimensions)
	}
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rowid, chunk_id, document_id, content, metadata, embedding
		FROM vectors ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	type scored struct {
		hit   driven.VectorHit
		rowid int64
	}
	var all []scored
	for rows.Next() {
		var rowid int64
		var hit driven.VectorHit
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&rowid, &hit.ChunkID, &hit.DocumentID, &hit.Content, &metadataJSON, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		if metadataJSON != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON), &hit.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshalling metadata: %w", err)
			}
		}
		hit.Similarity = normalisedCosine(query, bytesToFloat32Slice(blob))
		all = append(all, scored{hit: hit, rowid: rowid})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].hit.Similarity != all[j].hit.Similarity {
			return all[i].hit.Similarity > all[j].hit.Similarity
		}
		return all[i].rowid < all[j].rowid
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
func (s *VectorStore) Delete(ctx context.Context, documentID string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM vectors WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting vectors: %w", err)
	}
	return nil
}

// Count returns the total number of stored vectors.
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors")
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return count, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
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
