package postprocessors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/postprocessors/chunker"
)

// upperProcessor uppercases chunk content, for pipeline ordering tests.
type upperProcessor struct{}

func (upperProcessor) Name() string { return "upper" }

func (upperProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].Content = "UPPER:" + chunks[i].Content
	}
	return chunks, nil
}

// failingProcessor always errors.
type failingProcessor struct{}

func (failingProcessor) Name() string { return "failing" }

func (failingProcessor) Process(_ context.Context, _ *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	return nil, errors.New("boom")
}

func TestPipeline_Process(t *testing.T) {
	pipeline := NewPipeline(chunker.New())
	doc := &domain.Document{ID: "doc-1", Content: "Some document content."}

	chunks, err := pipeline.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "Some document content.", chunks[0].Content)
}

func TestPipeline_ProcessorsRunInOrder(t *testing.T) {
	pipeline := NewPipeline(chunker.New(), upperProcessor{})
	doc := &domain.Document{ID: "doc-1", Content: "content"}

	chunks, err := pipeline.Process(context.Background(), doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "UPPER:content", chunks[0].Content)
}

func TestPipeline_ProcessorErrorNamed(t *testing.T) {
	pipeline := NewPipeline(chunker.New(), failingProcessor{})
	doc := &domain.Document{ID: "doc-1", Content: "content"}

	_, err := pipeline.Process(context.Background(), doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "processor failing")
}

func TestPipeline_NilDocument(t *testing.T) {
	pipeline := NewPipeline(chunker.New())

	_, err := pipeline.Process(context.Background(), nil)
	assert.Error(t, err)
}

func TestPipeline_Add(t *testing.T) {
	pipeline := NewPipeline()
	assert.Equal(t, 0, pipeline.Len())

	pipeline.Add(chunker.New())
	assert.Equal(t, 1, pipeline.Len())
}
