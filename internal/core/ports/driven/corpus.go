package driven

import (
	"context"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
)

// CorpusSource enumerates the source files of a watched directory.
// It never mutates the filesystem.
type CorpusSource interface {
	// Validate checks that the watched location exists and is readable.
	// Returns domain.ErrCorpusNotFound when it is missing or not a
	// directory.
	Validate(ctx context.Context) error

	// Scan returns the eligible files in lexicographic name order,
	// together with the entries that were recognised but skipped.
	// Only immediate regular files are considered.
	Scan(ctx context.Context) (*domain.ScanResult, error)

	// Watch emits an event for every change under the watched
	// directory until ctx is cancelled. The channel is closed when the
	// watch ends.
	Watch(ctx context.Context) (<-chan domain.CorpusEvent, error)

	// Close releases resources.
	Close() error
}
