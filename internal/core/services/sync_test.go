package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	stdsync "sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driving"
)

// --- Mock implementations for synchroniser testing ---

type mockCorpus struct {
	scan        *domain.ScanResult
	validateErr error
	scanErr     error
}

func (m *mockCorpus) Validate(_ context.Context) error {
	return m.validateErr
}

func (m *mockCorpus) Scan(_ context.Context) (*domain.ScanResult, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	return m.scan, nil
}

func (m *mockCorpus) Watch(_ context.Context) (<-chan domain.CorpusEvent, error) {
	return nil, errors.New("watch not implemented")
}

func (m *mockCorpus) Close() error { return nil }

type mockLedger struct {
	recorded domain.FileSet
	loadErr  error
	saveErr  error
	saved    []domain.FileSet
}

func (m *mockLedger) Load(_ context.Context) (domain.FileSet, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.recorded == nil {
		return domain.NewFileSet(), nil
	}
	return m.recorded, nil
}

func (m *mockLedger) Save(_ context.Context, files domain.FileSet) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, files)
	return nil
}

type mockExtractors struct {
	failing map[string]error
}

func (m *mockExtractors) Register(_ driven.Extractor) {}

func (m *mockExtractors) Extensions() []string { return []string{".pdf"} }

func (m *mockExtractors) Extract(_ context.Context, file domain.SourceFile) (*domain.Document, error) {
	if err, ok := m.failing[file.Name]; ok {
		return nil, err
	}
	return &domain.Document{
		Name: file.Name,
		Path: file.Path,
		Pages: []domain.Page{
			{Number: 1, Text: "text of " + file.Name},
		},
	}, nil
}

type mockPipeline struct {
	err error
}

func (m *mockPipeline) Process(_ context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	var chunks []domain.Chunk
	for _, page := range doc.Pages {
		chunks = append(chunks, domain.Chunk{
			ID:      fmt.Sprintf("%s-%d", doc.Name, page.Number),
			Source:  doc.Name,
			Page:    page.Number,
			Content: page.Text,
		})
	}
	return chunks, nil
}

type mockEmbedder struct {
	mu       stdsync.Mutex
	calls    int
	failAt   int // 1-based call number that fails; 0 never fails
	embedErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failAt > 0 && m.calls >= m.failAt {
		return nil, m.embedErr
	}
	return []float32{0.1, 0.2}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return 2 }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockStore struct {
	exists    bool
	existsErr error
	writeErr  error
	replaced  [][]domain.IndexEntry
}

func (m *mockStore) Exists(_ context.Context) (bool, error) {
	return m.exists, m.existsErr
}

func (m *mockStore) Replace(_ context.Context, entries []domain.IndexEntry) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.replaced = append(m.replaced, entries)
	return nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	if len(m.replaced) == 0 {
		return 0, nil
	}
	return len(m.replaced[len(m.replaced)-1]), nil
}

func (m *mockStore) Close() error { return nil }

// --- Fixture ---

type fixture struct {
	corpus   *mockCorpus
	ledger   *mockLedger
	embedder *mockEmbedder
	store    *mockStore
	sync     *Synchroniser
}

func scanOf(names ...string) *domain.ScanResult {
	scan := &domain.ScanResult{}
	for _, name := range names {
		scan.Files = append(scan.Files, domain.SourceFile{Name: name, Path: "/docs/" + name})
	}
	return scan
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		corpus:   &mockCorpus{scan: scanOf()},
		ledger:   &mockLedger{},
		embedder: &mockEmbedder{},
		store:    &mockStore{},
	}
	f.sync = NewSynchroniser(
		f.corpus,
		f.ledger,
		&mockExtractors{},
		&mockPipeline{},
		f.embedder,
		f.store,
		slog.New(slog.DiscardHandler),
		opts...,
	)
	return f
}

// --- Run ---

func TestRun_FirstRunRebuildsAndCommitsLedger(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf")
	// No ledger, no store.

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, report.Rebuilt)
	assert.Equal(t, 1, report.Files)
	assert.Equal(t, 1, report.Pages)
	assert.Equal(t, 1, report.Chunks)
	require.Len(t, f.ledger.saved, 1)
	assert.True(t, f.ledger.saved[0].Equal(domain.NewFileSet("a.pdf")))
	require.Len(t, f.store.replaced, 1)
	require.Len(t, f.store.replaced[0], 1)
	assert.Equal(t, []float32{0.1, 0.2}, f.store.replaced[0][0].Vector)
}

func TestRun_NoChangeIsNoOp(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf")
	f.ledger.recorded = domain.NewFileSet("a.pdf")
	f.store.exists = true

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.False(t, report.Rebuilt)
	assert.Equal(t, 0, f.embedder.callCount(), "no embedding calls on a no-op pass")
	assert.Empty(t, f.store.replaced, "no store writes on a no-op pass")
	assert.Empty(t, f.ledger.saved, "ledger untouched on a no-op pass")
}

func TestRun_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf", "b.pdf")

	first, err := f.sync.Run(context.Background(), driving.SyncOptions{})
	require.NoError(t, err)
	require.True(t, first.Rebuilt)

	// Simulate the persisted outcome of the first run.
	f.ledger.recorded = f.ledger.saved[0]
	f.store.exists = true
	callsAfterFirst := f.embedder.callCount()

	second, err := f.sync.Run(context.Background(), driving.SyncOptions{})
	require.NoError(t, err)
	assert.False(t, second.Rebuilt)
	assert.Equal(t, callsAfterFirst, f.embedder.callCount())
}

func TestRun_NewFileTriggersRebuild(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf", "b.pdf")
	f.ledger.recorded = domain.NewFileSet("a.pdf")
	f.store.exists = true

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, report.Rebuilt)
	// Every eligible file is re-embedded, not just the new one.
	assert.Equal(t, 2, f.embedder.callCount())
	require.Len(t, f.ledger.saved, 1)
	assert.True(t, f.ledger.saved[0].Equal(domain.NewFileSet("a.pdf", "b.pdf")))
}

func TestRun_RemovedFileTriggersRebuild(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf")
	f.ledger.recorded = domain.NewFileSet("a.pdf", "b.pdf")
	f.store.exists = true

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, report.Rebuilt)
	require.Len(t, f.ledger.saved, 1)
	assert.True(t, f.ledger.saved[0].Equal(domain.NewFileSet("a.pdf")))
}

func TestRun_MissingIndexTriggersRebuild(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf")
	f.ledger.recorded = domain.NewFileSet("a.pdf")
	f.store.exists = false

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, report.Rebuilt)
}

func TestRun_ForceRebuildsWithoutDivergence(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf")
	f.ledger.recorded = domain.NewFileSet("a.pdf")
	f.store.exists = true

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{Force: true})

	require.NoError(t, err)
	assert.True(t, report.Rebuilt)
	assert.Equal(t, 1, f.embedder.callCount())
}

func TestRun_MissingCorpusDirectoryIsFatal(t *testing.T) {
	f := newFixture(t)
	f.corpus.validateErr = fmt.Errorf("%w: /docs", domain.ErrCorpusNotFound)

	_, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorpusNotFound)
	assert.Equal(t, 0, f.embedder.callCount())
}

func TestRun_ExtractionFailureSkipsFileOnly(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("bad.pdf", "good.pdf")
	f.sync.extractors = &mockExtractors{failing: map[string]error{
		"bad.pdf": fmt.Errorf("%w: bad.pdf", domain.ErrExtraction),
	}}

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, report.Rebuilt)
	assert.Equal(t, 1, report.FailedFiles)
	assert.Equal(t, 1, report.Chunks)
	// The failed file was still part of the scanned set and is
	// recorded, so it does not retrigger a rebuild on the next run.
	require.Len(t, f.ledger.saved, 1)
	assert.True(t, f.ledger.saved[0].Equal(domain.NewFileSet("bad.pdf", "good.pdf")))
}

func TestRun_EmbeddingFailureLeavesLedgerUntouched(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf", "b.pdf")
	f.embedder.failAt = 2
	f.embedder.embedErr = errors.New("backend unavailable")

	_, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Empty(t, f.ledger.saved, "ledger must not be committed after a failed rebuild")
	assert.Empty(t, f.store.replaced)
}

func TestRun_StoreWriteFailureLeavesLedgerUntouched(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf")
	f.store.writeErr = errors.New("connection refused")

	_, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrStoreWrite)
	assert.Empty(t, f.ledger.saved)
}

func TestRun_CorruptLedgerIsFatalByDefault(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf")
	f.ledger.loadErr = fmt.Errorf("%w: unexpected end of JSON input", domain.ErrCorruptLedger)

	_, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCorruptLedger)
	assert.Equal(t, 0, f.embedder.callCount())
}

func TestRun_CorruptLedgerResetForcesRebuild(t *testing.T) {
	f := newFixture(t, WithResetOnCorrupt())
	f.corpus.scan = scanOf("a.pdf")
	f.ledger.loadErr = fmt.Errorf("%w: unexpected end of JSON input", domain.ErrCorruptLedger)
	f.store.exists = true

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, report.Rebuilt)
	require.Len(t, f.ledger.saved, 1)
	assert.True(t, f.ledger.saved[0].Equal(domain.NewFileSet("a.pdf")))
}

func TestRun_EmptyCorpusCommitsEmptyLedger(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf()
	f.ledger.recorded = domain.NewFileSet("gone.pdf")
	f.store.exists = true

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.True(t, report.Rebuilt)
	assert.Equal(t, 0, report.Chunks)
	require.Len(t, f.store.replaced, 1)
	assert.Empty(t, f.store.replaced[0])
	require.Len(t, f.ledger.saved, 1)
	assert.Equal(t, 0, f.ledger.saved[0].Len())
}

func TestRun_ParallelEmbeddingPreservesOrder(t *testing.T) {
	f := newFixture(t, WithConcurrency(4))
	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("doc-%02d.pdf", i)
	}
	f.corpus.scan = scanOf(names...)

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, 20, report.Chunks)
	require.Len(t, f.store.replaced, 1)
	entries := f.store.replaced[0]
	require.Len(t, entries, 20)
	for i, entry := range entries {
		assert.Equal(t, names[i], entry.Source, "entry %d out of order", i)
		assert.NotNil(t, entry.Vector)
	}
}

func TestRun_ReportsSkippedEntries(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = &domain.ScanResult{
		Files: []domain.SourceFile{{Name: "a.pdf", Path: "/docs/a.pdf"}},
		Skipped: []domain.SkippedFile{
			{Name: "README", Reason: domain.ErrMissingExtension},
			{Name: "notes.txt", Reason: domain.ErrUnsupportedFile},
		},
	}

	report, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, 2, report.SkippedEntries)
	assert.Equal(t, 1, report.Files)
}

// --- Check ---

func TestCheck_ReportsDrift(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf", "c.pdf")
	f.ledger.recorded = domain.NewFileSet("a.pdf", "b.pdf")
	f.store.exists = true

	drift, err := f.sync.Check(context.Background())

	require.NoError(t, err)
	assert.True(t, drift.IndexExists)
	assert.Equal(t, 2, drift.CurrentFiles)
	assert.Equal(t, 2, drift.RecordedFiles)
	assert.Equal(t, []string{"c.pdf"}, drift.Added)
	assert.Equal(t, []string{"b.pdf"}, drift.Removed)
	assert.True(t, drift.NeedsRebuild)
}

func TestCheck_NoDrift(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("a.pdf")
	f.ledger.recorded = domain.NewFileSet("a.pdf")
	f.store.exists = true

	drift, err := f.sync.Check(context.Background())

	require.NoError(t, err)
	assert.False(t, drift.NeedsRebuild)
	assert.Empty(t, drift.Added)
	assert.Empty(t, drift.Removed)
}

func TestCheck_NeverMutates(t *testing.T) {
	f := newFixture(t)
	f.corpus.scan = scanOf("new.pdf")

	_, err := f.sync.Check(context.Background())

	require.NoError(t, err)
	assert.Empty(t, f.ledger.saved)
	assert.Empty(t, f.store.replaced)
	assert.Equal(t, 0, f.embedder.callCount())
}

// --- Progress ---

type recordingProgress struct {
	mu         stdsync.Mutex
	total      int
	increments int
	finished   bool
}

func (p *recordingProgress) Start(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

func (p *recordingProgress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.increments++
}

func (p *recordingProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finished = true
}

func TestRun_ReportsProgress(t *testing.T) {
	progress := &recordingProgress{}
	f := newFixture(t, WithProgress(progress))
	f.corpus.scan = scanOf("a.pdf", "b.pdf", "c.pdf")

	_, err := f.sync.Run(context.Background(), driving.SyncOptions{})

	require.NoError(t, err)
	assert.Equal(t, 3, progress.total)
	assert.Equal(t, 3, progress.increments)
	assert.True(t, progress.finished)
}
