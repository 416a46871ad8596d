package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrCorpusNotFound indicates the watched directory is missing,
	// unreadable, or not a directory. Fatal before any scan.
	ErrCorpusNotFound = errors.New("corpus directory not found")

	// ErrCorruptLedger indicates the persisted ledger could not be parsed.
	// A half-written or damaged ledger must never be accepted as a
	// partial set.
	ErrCorruptLedger = errors.New("ledger is corrupt")

	// ErrMissingExtension indicates a corpus entry with no file extension.
	// Reported as a diagnostic and skipped, never silently ignored.
	ErrMissingExtension = errors.New("file has no extension")

	// ErrUnsupportedFile indicates a file type no extractor handles.
	// The file is reported and skipped; processing continues.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrExtraction indicates a per-file parse failure. Local to the
	// file: it is logged and skipped, the rebuild continues.
	ErrExtraction = errors.New("extraction failed")

	// ErrEmbedding indicates the embedding backend call failed.
	// Fatal to the rebuild: a partially embedded corpus must not be
	// committed.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStoreWrite indicates the vector store rejected the write.
	// Fatal to the rebuild; the ledger is left unchanged.
	ErrStoreWrite = errors.New("vector store write failed")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
