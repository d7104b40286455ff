// Package postprocessors turns normalised documents into indexable
// chunks. Processors run as an ordered pipeline; the first stage
// produces chunks from the document and later stages transform them.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/positron-labs/positron/internal/core/domain"
	"github.com/positron-labs/positron/internal/core/ports/driven"
)

// Pipeline runs processors in registration order.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline builds a pipeline from the given stages.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process feeds the document through every stage. The chunk slice
// starts nil, so the opening stage is responsible for creating chunks.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, errors.New("document is nil")
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		var err error
		if chunks, err = stage.Process(ctx, doc, chunks); err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
	}
	return chunks, nil
}

// Add appends a stage to the end of the pipeline.
func (p *Pipeline) Add(stage driven.PostProcessor) {
	p.stages = append(p.stages, stage)
}

// Len reports the number of stages.
func (p *Pipeline) Len() int {
	return len(p.stages)
}
