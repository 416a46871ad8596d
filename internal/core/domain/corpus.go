package domain

import "sort"

// SourceFile is an eligible file discovered in the watched directory.
// The system never mutates source files; they appear and disappear as
// the external filesystem changes.
type SourceFile struct {
	// Name is the file name, unique within the watched directory.
	Name string

	// Path is the full path used to open the file.
	Path string
}

// SkippedFile records a corpus entry that was excluded from indexing,
// together with the reason (ErrMissingExtension, ErrUnsupportedFile).
type SkippedFile struct {
	Name   string
	Reason error
}

// ScanResult is the outcome of one corpus scan: the eligible files in
// lexicographic name order, plus the entries that were reported and
// skipped.
type ScanResult struct {
	Files   []SourceFile
	Skipped []SkippedFile
}

// Names returns the eligible file names in scan order.
func (r *ScanResult) Names() []string {
	names := make([]string, len(r.Files))
	for i, f := range r.Files {
		names[i] = f.Name
	}
	return names
}

// FileSet returns the eligible names as a set.
func (r *ScanResult) FileSet() FileSet {
	return NewFileSet(r.Names()...)
}

// CorpusEvent is a filesystem change notification from a watched corpus.
type CorpusEvent struct {
	// Name is the affected file name.
	Name string

	// Op describes the change (create, write, remove, rename).
	Op string
}

// FileSet is a set of file names. It is the unit the rebuild decision
// and the ledger work on.
type FileSet map[string]struct{}

// NewFileSet builds a set from the given names.
func NewFileSet(names ...string) FileSet {
	s := make(FileSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// Add inserts a name into the set.
func (s FileSet) Add(name string) {
	s[name] = struct{}{}
}

// Has reports whether name is in the set.
func (s FileSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Len returns the number of names in the set.
func (s FileSet) Len() int {
	return len(s)
}

// SubsetOf reports whether every name in s is also in other.
func (s FileSet) SubsetOf(other FileSet) bool {
	for name := range s {
		if !other.Has(name) {
			return false
		}
	}
	return true
}

// Equal reports whether both sets contain exactly the same names.
func (s FileSet) Equal(other FileSet) bool {
	return len(s) == len(other) && s.SubsetOf(other)
}

// Diff returns the names present in s but absent from other, sorted.
func (s FileSet) Diff(other FileSet) []string {
	var names []string
	for name := range s {
		if !other.Has(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Sorted returns all names in lexicographic order.
func (s FileSet) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NeedsRebuild decides whether the index must be rebuilt. A rebuild is
// required when no index has been persisted yet, when unseen files are
// present in the corpus, or when previously indexed files have
// disappeared. Any divergence triggers a full rebuild of every eligible
// file: chunk ordering and embeddings derive from the whole corpus, so
// the system trades recompute cost for freedom from partial-index
// staleness.
func NeedsRebuild(indexExists bool, current, recorded FileSet) bool {
	return !indexExists || !current.Equal(recorded)
}
