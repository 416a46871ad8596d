package driven

import (
	"context"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
)

// VectorStore persists embedded chunks one collection at a time. The
// core only writes; querying the store is out of scope.
type VectorStore interface {
	// Exists reports whether the configured collection has been
	// persisted by a previous rebuild.
	Exists(ctx context.Context) (bool, error)

	// Replace writes the entries as the complete new content of the
	// collection, superseding whatever was there before. Replace with
	// no entries still establishes the collection. A failed Replace
	// must not leave a partial collection behind: afterwards Exists
	// reports false, so the next run rebuilds rather than trusting
	// incomplete content.
	Replace(ctx context.Context, entries []domain.IndexEntry) error

	// Count returns the number of entries currently persisted.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
