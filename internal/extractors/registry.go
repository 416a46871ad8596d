// Package extractors provides implementations of the Extractor
// interface for the supported source file types, and the registry that
// dispatches files to them by extension.
//
// Extractors are registered with the Registry at startup.
package extractors

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
type Registry struct {
	byExtension map[string]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byExtension: make(map[string]driven.Extractor),
	}
}

// Register adds an extractor for each extension it reports.
// A later registration for the same extension wins.
func (r *Registry) Register(extractor driven.Extractor) {
	for _, ext := range extractor.Extensions() {
		r.byExtension[strings.ToLower(ext)] = extractor
	}
}

// Extensions returns all registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract dispatches the file to the extractor registered for its
// extension. Files with no extension fail with ErrMissingExtension;
// extensions without an extractor fail with ErrUnsupportedFile.
func (r *Registry) Extract(ctx context.Context, file domain.SourceFile) (*domain.Document, error) {
	ext := strings.ToLower(filepath.Ext(file.Name))
	if ext == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingExtension, file.Name)
	}

	extractor, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFile, file.Name)
	}

	return extractor.Extract(ctx, file)
}
