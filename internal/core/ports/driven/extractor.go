package driven

import (
	"context"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
)

// Extractor turns one kind of source file into extracted page text.
type Extractor interface {
	// Extensions returns the lower-case file extensions this extractor
	// handles, including the leading dot (e.g. ".pdf").
	Extensions() []string

	// Extract parses the file and returns its pages in order. A parse
	// failure is local to the file; callers skip the file and continue.
	Extract(ctx context.Context, file domain.SourceFile) (*domain.Document, error)
}

// ExtractorRegistry dispatches files to the extractor registered for
// their extension.
type ExtractorRegistry interface {
	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// Extensions returns all extensions with a registered extractor.
	Extensions() []string

	// Extract dispatches to the matching extractor. Files with no
	// extension return domain.ErrMissingExtension; extensions without
	// an extractor return domain.ErrUnsupportedFile.
	Extract(ctx context.Context, file domain.SourceFile) (*domain.Document, error)
}
