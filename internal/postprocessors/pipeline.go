// Package postprocessors turns extracted documents into index-ready chunks.
package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// ErrNilDocument is returned when a pipeline is asked to process nothing.
var ErrNilDocument = errors.New("document is nil")

// Pipeline runs a fixed sequence of PostProcessors over a document.
// The first stage sees nil chunks and produces the initial set; each
// later stage receives the previous stage's output.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline builds a pipeline from the given stages, run in order.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		out, err := stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", stage.Name(), err)
		}
		chunks = out
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
