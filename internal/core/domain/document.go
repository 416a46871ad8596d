package domain

// Page is one unit of extracted content from a source file. Pages are
// ephemeral: they exist only for the duration of a rebuild run.
type Page struct {
	// Number is the 1-based position of the page within its file.
	Number int

	// Text is the extracted plain text.
	Text string
}

// Document holds the extracted pages of one source file, in order.
type Document struct {
	// Name is the source file name.
	Name string

	// Path is the file's location on disk.
	Path string

	// Pages are the extracted pages in file order.
	Pages []Page
}

// Chunk is a contiguous slice of a page's text, bounded by the
// configured window size. Consecutive chunks from the same document
// overlap by the configured overlap, so no semantic boundary is lost to
// a hard cut. Chunks are ephemeral; only their embedded form persists.
type Chunk struct {
	// ID identifies the chunk in the vector store. Deterministic for a
	// given (source, page, ordinal) so that re-runs produce stable keys.
	ID string

	// Source is the name of the file the chunk came from.
	Source string

	// Page is the 1-based page number the chunk was cut from.
	Page int

	// Ordinal is the chunk's position in the document's chunk sequence.
	Ordinal int

	// StartOffset is the rune offset of the chunk within its page.
	StartOffset int

	// Content is the chunk text.
	Content string
}

// IndexEntry is a chunk plus its embedding vector, as written to the
// vector store. The core only ever writes entries; it never reads them
// back.
type IndexEntry struct {
	Chunk

	// Vector is the embedding of Content.
	Vector []float32
}
