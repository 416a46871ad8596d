// Package file provides the flat-file ledger store. The ledger is a
// JSON array of file names, matching the record format of earlier
// versions of the tool.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.LedgerStore = (*Ledger)(nil)

// Ledger persists the processed file set as a JSON array at a fixed
// path. Saves are write-then-rename so a crash mid-write never leaves
// a half-written ledger in place.
type Ledger struct {
	path string
}

// New creates a ledger store at path. The file need not exist yet.
func New(path string) *Ledger {
	return &Ledger{path: path}
}

// Load returns the recorded set. A missing file is a first run and
// loads as the empty set. Content that does not parse as a JSON array
// of strings fails with ErrCorruptLedger.
func (l *Ledger) Load(_ context.Context) (domain.FileSet, error) {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return domain.NewFileSet(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorruptLedger, l.path, err)
	}

	return domain.NewFileSet(names...), nil
}

// Save overwrites the ledger with the given set. Names are stored
// sorted for stable serialisation; the order carries no meaning.
func (l *Ledger) Save(_ context.Context, files domain.FileSet) error {
	data, err := json.MarshalIndent(files.Sorted(), "", "    ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(l.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp ledger: %w", err)
	}

	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace ledger: %w", err)
	}

	return nil
}
