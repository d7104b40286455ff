package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
	"github.com/positron-labs/positron/internal/core/ports/driving"
	"github.com/positron-labs/positron/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// MaxLinkedPDFs caps how many linked PDFs a single URL ingestion follows.
const MaxLinkedPDFs = 5

// IngestService runs the ingestion pipeline: normalise, chunk, embed, store.
type IngestService struct {
	registry driven.NormaliserRegistry
	pipeline driven.PostProcessorPipeline
	embedder driven.EmbeddingProvider
	vectors  driven.VectorStore
	docs     driven.DocumentStore
	fetcher  driven.PageFetcher
}

// NewIngestService creates a new ingest service.
// The fetcher is optional; without it URL ingestion is disabled.
func NewIngestService(
	registry driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingProvider,
	vectors driven.VectorStore,
	docs driven.DocumentStore,
	fetcher driven.PageFetcher,
) *IngestService {
	return &IngestService{
		registry: registry,
		pipeline: pipeline,
		embedder: embedder,
		vectors:  vectors,
		docs:     docs,
		fetcher:  fetcher,
	}
}

// IngestFile ingests a single file's content.
//
//nolint:gocyclo // Pipeline function with necessary sequential steps
func (s *IngestService) IngestFile(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", domain.ErrInvalidInput)
	}

	logger.Section("Ingestion")
	logger.Debug("Ingesting %q (%s, %d bytes)", raw.Filename, raw.ContentType, len(raw.Content))

	// 1. Normalise raw bytes into text
	result, err := s.registry.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalise: %w", err)
	}

	doc := result.Document
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	// 2. Chunk the normalised content
	chunks, err := s.pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("chunk: %w", err)
	}
	doc.ChunkCount = len(chunks)
	logger.Debug("Produced %d chunks", len(chunks))

	// A document with no extractable text is still recorded so the user
	// can see it was processed.
	if len(chunks) == 0 {
		if err := s.docs.SaveDocument(ctx, &doc); err != nil {
			return nil, fmt.Errorf("save document: %w", err)
		}
		logger.Info("Ingested %q with no chunks", doc.Filename)
		return &doc, nil
	}

	// 3. Embed all chunks
	embeddings, err := s.embedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}

	// 4. Save metadata first so a vector failure can be rolled back
	if err := s.docs.SaveDocument(ctx, &doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	// 5. Replace the document's vectors atomically
	entries := make([]driven.VectorEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = driven.VectorEntry{
			ChunkID:   chunk.ID,
			Content:   chunk.Content,
			Embedding: embeddings[i],
			Metadata:  chunkMetadata(&doc, chunk),
		}
	}
	if err := s.vectors.Upsert(ctx, doc.ID, entries); err != nil {
		// Remove the half-ingested record so a retry starts clean.
		if delErr := s.docs.DeleteDocument(ctx, doc.ID); delErr != nil && !errors.Is(delErr, domain.ErrNotFound) {
			logger.Warn("Cleanup of document %s failed: %v", doc.ID, delErr)
		}
		return nil, fmt.Errorf("store vectors: %w", err)
	}

	logger.Info("Ingested %q: %d chunks", doc.Filename, doc.ChunkCount)
	return &doc, nil
}

// IngestURL fetches a web page, ingests its text, and optionally ingests
// PDFs linked from the page.
func (s *IngestService) IngestURL(ctx context.Context, url string, extractLinkedPDFs bool) ([]domain.Document, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: URL ingestion requires a page fetcher", domain.ErrInvalidInput)
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL", domain.ErrInvalidInput)
	}

	logger.Section("URL Ingestion")
	logger.Debug("Fetching %s", url)

	page, err := s.fetcher.FetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	pageDoc, err := s.IngestFile(ctx, &domain.RawDocument{
		Filename:    page.FinalURL,
		SourceURL:   page.FinalURL,
		ContentType: page.ContentType,
		Content:     page.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("ingest page: %w", err)
	}

	docs := []domain.Document{*pageDoc}

	// Linked PDFs can only be discovered on HTML pages.
	if !extractLinkedPDFs || page.ContentType != "text/html" {
		return docs, nil
	}

	links := s.fetcher.DiscoverPDFLinks(page.FinalURL, page.Body)
	if len(links) > MaxLinkedPDFs {
		logger.Info("Found %d linked PDFs, following first %d", len(links), MaxLinkedPDFs)
		links = links[:MaxLinkedPDFs]
	}

	for _, link := range links {
		pdfDoc, err := s.ingestLinkedPDF(ctx, link)
		if err != nil {
			// A broken link must not fail the whole page ingestion.
			logger.Warn("Skipping linked PDF %s: %v", link, err)
			continue
		}
		docs = append(docs, *pdfDoc)
	}

	return docs, nil
}

// ingestLinkedPDF downloads and ingests one PDF discovered on a page.
func (s *IngestService) ingestLinkedPDF(ctx context.Context, url string) (*domain.Document, error) {
	body, err := s.fetcher.FetchPDF(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch pdf: %w", err)
	}

	return s.IngestFile(ctx, &domain.RawDocument{
		Filename:    path.Base(url),
		SourceURL:   url,
		ContentType: "application/pdf",
		Content:     body,
	})
}

// embedChunks embeds all chunk contents in one batch, falling back to
// per-chunk requests when the batch call fails for a retryable reason.
func (s *IngestService) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
	if err == nil {
		if len(embeddings) != len(chunks) {
			return nil, fmt.Errorf("embedding count %d does not match chunk count %d", len(embeddings), len(chunks))
		}
		return embeddings, nil
	}

	// Dimension problems and invalid input will not improve chunk by chunk.
	if errors.Is(err, domain.ErrDimensionMismatch) || errors.Is(err, domain.ErrInvalidInput) {
		return nil, err
	}

	logger.Warn("Batch embedding failed, retrying per chunk: %v", err)

	embeddings = make([][]float32, len(chunks))
	for i, text := range texts {
		embedding, err := s.embedder.EmbedDocuments(ctx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		if len(embedding) != 1 {
			return nil, fmt.Errorf("embed chunk %d: expected 1 embedding, got %d", i, len(embedding))
		}
		embeddings[i] = embedding[0]
	}

	return embeddings, nil
}

// chunkMetadata builds the provenance metadata stored with each vector.
func chunkMetadata(doc *domain.Document, chunk domain.Chunk) map[string]any {
	meta := map[string]any{
		"source":   doc.Filename,
		"position": chunk.Position,
	}
	if page := doc.PageAt(chunk.StartOffset); page > 0 {
		meta["page"] = page
	}
	for k, v := range chunk.Metadata {
		meta[k] = v
	}
	return meta
}
