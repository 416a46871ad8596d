package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driving"
)

// Ensure Synchroniser implements the interface.
var _ driving.Synchroniser = (*Synchroniser)(nil)

// Synchroniser keeps the vector index in step with the watched corpus.
// It owns the rebuild decision and, when a rebuild is needed, drives
// extraction, chunking, embedding and the final ledger commit.
type Synchroniser struct {
	corpus     driven.CorpusSource
	ledger     driven.LedgerStore
	extractors driven.ExtractorRegistry
	pipeline   driven.PostProcessorPipeline
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	logger     *slog.Logger

	concurrency    int
	resetOnCorrupt bool
	progress       ProgressReporter
}

// Option configures the synchroniser.
type Option func(*Synchroniser)

// WithConcurrency bounds parallel embedding calls during a rebuild.
func WithConcurrency(n int) Option {
	return func(s *Synchroniser) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithResetOnCorrupt treats a corrupt ledger as absent instead of
// failing the run. The divergence then forces a full rebuild, which
// restores a consistent ledger.
func WithResetOnCorrupt() Option {
	return func(s *Synchroniser) {
		s.resetOnCorrupt = true
	}
}

// WithProgress attaches a progress reporter spanning the embedding
// phase of a rebuild.
func WithProgress(p ProgressReporter) Option {
	return func(s *Synchroniser) {
		if p != nil {
			s.progress = p
		}
	}
}

// NewSynchroniser creates a synchroniser over the given collaborators.
func NewSynchroniser(
	corpus driven.CorpusSource,
	ledger driven.LedgerStore,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	logger *slog.Logger,
	opts ...Option,
) *Synchroniser {
	s := &Synchroniser{
		corpus:      corpus,
		ledger:      ledger,
		extractors:  extractors,
		pipeline:    pipeline,
		embedder:    embedder,
		store:       store,
		logger:      logger,
		concurrency: 1,
		progress:    noopProgress{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run performs one synchronisation pass.
//
// The pass is a no-op when the corpus matches the ledger and the index
// already exists. Otherwise every eligible file is re-extracted,
// re-chunked and re-embedded, the store collection is replaced, and
// only then is the ledger committed with the exact file set that was
// scanned. A failed rebuild leaves the ledger untouched so the next
// run retries in full.
func (s *Synchroniser) Run(ctx context.Context, opts driving.SyncOptions) (*driving.SyncReport, error) {
	started := time.Now()

	if err := s.corpus.Validate(ctx); err != nil {
		return nil, err
	}

	scan, err := s.corpus.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}
	s.reportSkipped(scan)

	recorded, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check index existence: %w", err)
	}

	current := scan.FileSet()
	report := &driving.SyncReport{
		Files:          len(scan.Files),
		SkippedEntries: len(scan.Skipped),
	}

	if !domain.NeedsRebuild(exists, current, recorded) && !opts.Force {
		s.logger.Info("index is up to date", "files", len(scan.Files))
		report.Duration = time.Since(started)
		return report, nil
	}

	s.logger.Info("rebuilding index",
		"files", len(scan.Files),
		"added", len(current.Diff(recorded)),
		"removed", len(recorded.Diff(current)),
		"index_exists", exists,
		"forced", opts.Force)

	if err := s.rebuild(ctx, scan, report); err != nil {
		return nil, err
	}

	report.Rebuilt = true
	report.Duration = time.Since(started)
	s.logger.Info("rebuild complete",
		"files", report.Files,
		"pages", report.Pages,
		"chunks", report.Chunks,
		"failed_files", report.FailedFiles,
		"duration", report.Duration)
	return report, nil
}

// Check reports the divergence between corpus, ledger and index
// without mutating anything.
func (s *Synchroniser) Check(ctx context.Context) (*driving.DriftReport, error) {
	if err := s.corpus.Validate(ctx); err != nil {
		return nil, err
	}

	scan, err := s.corpus.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan corpus: %w", err)
	}

	recorded, err := s.loadLedger(ctx)
	if err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check index existence: %w", err)
	}

	current := scan.FileSet()
	return &driving.DriftReport{
		IndexExists:   exists,
		CurrentFiles:  current.Len(),
		RecordedFiles: recorded.Len(),
		Added:         current.Diff(recorded),
		Removed:       recorded.Diff(current),
		NeedsRebuild:  domain.NeedsRebuild(exists, current, recorded),
	}, nil
}

// loadLedger loads the recorded file set. A corrupt ledger aborts the
// run unless reset-on-corrupt was chosen, in which case it is treated
// as absent and the resulting divergence forces a full rebuild.
func (s *Synchroniser) loadLedger(ctx context.Context) (domain.FileSet, error) {
	recorded, err := s.ledger.Load(ctx)
	if err == nil {
		return recorded, nil
	}
	if errors.Is(err, domain.ErrCorruptLedger) && s.resetOnCorrupt {
		s.logger.Warn("ledger is corrupt, treating as empty", "error", err)
		return domain.NewFileSet(), nil
	}
	return nil, fmt.Errorf("load ledger: %w", err)
}

func (s *Synchroniser) reportSkipped(scan *domain.ScanResult) {
	for _, skipped := range scan.Skipped {
		s.logger.Warn("file skipped", "file", skipped.Name, "reason", skipped.Reason)
	}
}
