package driving

import (
	"context"
	"time"
)

// Synchroniser keeps the vector index in step with the watched corpus.
type Synchroniser interface {
	// Run performs one synchronisation pass: scan the corpus, decide
	// whether a rebuild is needed and, if so, rebuild and commit the
	// ledger. With no divergence the pass is a no-op.
	Run(ctx context.Context, opts SyncOptions) (*SyncReport, error)

	// Check reports the divergence between corpus, ledger and index
	// without mutating anything.
	Check(ctx context.Context) (*DriftReport, error)
}

// SyncOptions adjusts a single synchronisation pass.
type SyncOptions struct {
	// Force rebuilds even when corpus and ledger agree.
	Force bool
}

// SyncReport summarises one synchronisation pass.
type SyncReport struct {
	// Rebuilt indicates whether a rebuild ran. False means the pass
	// was a no-op because the index was already in step.
	Rebuilt bool

	// Files is the number of eligible files scanned.
	Files int

	// FailedFiles is the number of files skipped because extraction
	// or chunking failed.
	FailedFiles int

	// SkippedEntries is the number of directory entries reported as
	// unsupported during the scan.
	SkippedEntries int

	// Pages is the number of pages extracted.
	Pages int

	// Chunks is the number of chunks embedded and written.
	Chunks int

	// Duration is the wall-clock time of the pass.
	Duration time.Duration
}

// DriftReport describes how the corpus has diverged from the last
// indexed state.
type DriftReport struct {
	// IndexExists indicates whether a persisted index was found.
	IndexExists bool

	// CurrentFiles is the number of eligible files in the corpus.
	CurrentFiles int

	// RecordedFiles is the number of files in the ledger.
	RecordedFiles int

	// Added lists corpus files missing from the ledger, sorted.
	Added []string

	// Removed lists ledger files missing from the corpus, sorted.
	Removed []string

	// NeedsRebuild indicates whether the next Run would rebuild.
	NeedsRebuild bool
}
