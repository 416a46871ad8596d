package driven

import (
	"context"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
)

// LedgerStore persists the set of file names that were indexed as of
// the last successful rebuild. Implementations must round-trip exactly:
// Load after Save returns the same set, for any set including the
// empty one.
type LedgerStore interface {
	// Load returns the recorded set. A missing ledger is a first run,
	// not an error: Load returns the empty set. Unparseable content
	// returns domain.ErrCorruptLedger, never a partial set.
	Load(ctx context.Context) (domain.FileSet, error)

	// Save overwrites the ledger with the given set. The write is
	// atomic with respect to process crash: a half-written ledger must
	// never be accepted as valid by a later Load.
	Save(ctx context.Context, files domain.FileSet) error
}
