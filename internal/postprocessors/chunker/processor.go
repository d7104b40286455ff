// Package chunker provides a recursive overlapping text chunking processor.
//
// Content is split at the most natural boundary that fits the chunk size:
// paragraph breaks first, then sentence ends, then line breaks, then word
// boundaries, and only as a last resort mid-word. Consecutive chunks
// overlap so context near a boundary appears in both.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/positron-labs/positron/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must leave room for forward progress
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from
// document content. Offsets always index into doc.Content so page
// lookups stay valid.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	content := doc.Content
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	contentLen := len(content)
	estimatedChunks := (contentLen / (p.chunkSize - p.overlap)) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	position := 0
	start := 0

	for start < contentLen {
		end := start + p.chunkSize
		if end >= contentLen {
			end = contentLen
		} else {
			end = p.splitPoint(content, start, end)
		}

		segment := content[start:end]
		if strings.TrimSpace(segment) != "" {
			chunks = append(chunks, domain.Chunk{
				ID:          uuid.NewString(),
				DocumentID:  doc.ID,
				Content:     segment,
				Position:    position,
				StartOffset: start,
				EndOffset:   end,
				Metadata:    make(map[string]any),
			})
			position++
		}

		if end >= contentLen {
			break
		}

		next := end - p.overlap
		if next <= start {
			// Overlap would stall; continue without it
			next = end
		}
		start = next
	}

	return chunks, nil
}

// splitPoint finds the best boundary in content (start, limit] to end a
// chunk at, preferring paragraph breaks over sentence ends over line
// breaks over word boundaries.
func (p *Processor) splitPoint(content string, start, limit int) int {
	window := content[start:limit]

	if idx := strings.LastIndex(window, "\n\n"); idx > 0 {
		return start + idx + 2
	}

	if end := lastSentenceEnd(window); end > 0 {
		return start + end
	}

	if idx := strings.LastIndexByte(window, '\n'); idx > 0 {
		return start + idx + 1
	}

	if idx := strings.LastIndexByte(window, ' '); idx > 0 {
		return start + idx + 1
	}

	// Hard split, backed off to a rune boundary
	for limit > start+1 && !utf8.RuneStart(content[limit]) {
		limit--
	}
	return limit
}

// lastSentenceEnd returns the index just past the last sentence
// terminator in the window, or -1 when there is none.
func lastSentenceEnd(window string) int {
	end := -1
	for _, sep := range []string{". ", ".\n", "! ", "!\n", "? ", "?\n"} {
		if idx := strings.LastIndex(window, sep); idx >= 0 && idx+len(sep) > end {
			end = idx + len(sep)
		}
	}
	return end
}
