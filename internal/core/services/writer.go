package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driving"
)

// ProgressReporter receives embedding progress during a rebuild.
type ProgressReporter interface {
	Start(total int)
	Increment()
	Finish()
}

type noopProgress struct{}

func (noopProgress) Start(int) {}
func (noopProgress) Increment() {}
func (noopProgress) Finish()    {}

// rebuild re-derives the whole index: every eligible file is extracted
// and chunked, all chunks are embedded, the store collection is
// replaced and the ledger is committed. Per-file extraction failures
// are logged and skipped; embedding and store failures abort the
// rebuild before any state is committed.
func (s *Synchroniser) rebuild(ctx context.Context, scan *domain.ScanResult, report *driving.SyncReport) error {
	var chunks []domain.Chunk

	for _, file := range scan.Files {
		doc, err := s.extractors.Extract(ctx, file)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("extraction failed, file skipped", "file", file.Name, "error", err)
			report.FailedFiles++
			continue
		}

		fileChunks, err := s.pipeline.Process(ctx, doc)
		if err != nil {
			s.logger.Warn("chunking failed, file skipped", "file", file.Name, "error", err)
			report.FailedFiles++
			continue
		}

		s.logger.Debug("file processed",
			"file", file.Name,
			"pages", len(doc.Pages),
			"chunks", len(fileChunks))
		report.Pages += len(doc.Pages)
		chunks = append(chunks, fileChunks...)
	}
	report.Chunks = len(chunks)

	entries, err := s.embedAll(ctx, chunks)
	if err != nil {
		return err
	}

	if err := s.store.Replace(ctx, entries); err != nil {
		if errors.Is(err, domain.ErrStoreWrite) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}

	// The ledger records the exact eligible set that was scanned,
	// failed extractions included: those files were part of this
	// rebuild's corpus and must not retrigger one.
	if err := s.ledger.Save(ctx, scan.FileSet()); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	return nil
}

// embedAll turns chunks into index entries, embedding up to
// s.concurrency chunks in parallel. Entry order matches chunk order.
// The first embedding failure cancels the remaining work and aborts
// the rebuild.
func (s *Synchroniser) embedAll(ctx context.Context, chunks []domain.Chunk) ([]domain.IndexEntry, error) {
	entries := make([]domain.IndexEntry, len(chunks))

	s.progress.Start(len(chunks))
	defer s.progress.Finish()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i := range chunks {
		g.Go(func() error {
			vector, err := s.embedder.Embed(ctx, chunks[i].Content)
			if err != nil {
				return fmt.Errorf("%w: chunk %d of %s: %w",
					domain.ErrEmbedding, chunks[i].Ordinal, chunks[i].Source, err)
			}
			entries[i] = domain.IndexEntry{Chunk: chunks[i], Vector: vector}
			s.progress.Increment()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
