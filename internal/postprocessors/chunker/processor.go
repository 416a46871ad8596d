// Package chunker provides the sliding-window chunking processor.
package chunker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
)

// DefaultChunkSize is the default window size in runes.
const DefaultChunkSize = 5000

// DefaultChunkOverlap is the default number of runes shared by
// consecutive chunks.
const DefaultChunkOverlap = 2000

// chunkNamespace seeds the deterministic chunk IDs. Re-running a
// rebuild over unchanged content produces identical IDs.
var chunkNamespace = uuid.MustParse("5c0fbe1e-6d12-4e7b-9a92-2b6a4a1d2f3c")

// Processor cuts each page of a document into overlapping windows.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the window size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't reach the chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process cuts every page of the document into chunks. Input chunks
// are ignored; this processor creates the chunk sequence.
//
// Each window starts a stride of (size - overlap) runes after the
// previous one, and StartOffset records the window's rune position
// within its page. A non-empty page shorter than the window yields
// exactly one chunk; an empty page yields none.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	stride := p.chunkSize - p.overlap
	var chunks []domain.Chunk
	ordinal := 0

	for _, page := range doc.Pages {
		runes := []rune(page.Text)
		total := len(runes)
		if total == 0 {
			continue
		}

		for start := 0; ; start += stride {
			end := start + p.chunkSize
			if end > total {
				end = total
			}

			chunks = append(chunks, domain.Chunk{
				ID:          chunkID(doc.Name, page.Number, ordinal),
				Source:      doc.Name,
				Page:        page.Number,
				Ordinal:     ordinal,
				StartOffset: start,
				Content:     string(runes[start:end]),
			})
			ordinal++

			if end == total {
				break
			}
		}
	}

	return chunks, nil
}

// chunkID derives a stable UUID from the chunk's coordinates.
func chunkID(source string, page, ordinal int) string {
	name := fmt.Sprintf("%s/%d/%d", source, page, ordinal)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}
