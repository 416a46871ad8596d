// Package sqlite provides the SQLite-backed ledger store. Saves are
// transactional: the recorded set is replaced atomically or not at
// all.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/syndexlabs/syndex-cli/internal/adapters/driven/ledger/sqlite/migrations"
	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.LedgerStore = (*Ledger)(nil)

// Ledger persists the processed file set in a SQLite database.
type Ledger struct {
	db   *sql.DB
	path string
}

// New opens (creating if necessary) the ledger database at path and
// applies pending migrations.
func New(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	// Open database with WAL mode for better crash resilience
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger database: %w", err)
	}

	l := &Ledger{db: db, path: path}

	if err := l.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptLedger, err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// Load returns the recorded set. An empty table is a first run and
// loads as the empty set. A database that cannot be read fails with
// ErrCorruptLedger.
func (l *Ledger) Load(ctx context.Context) (domain.FileSet, error) {
	rows, err := l.db.QueryContext(ctx, "SELECT name FROM processed_files")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorruptLedger, l.path, err)
	}
	defer rows.Close()

	files := domain.NewFileSet()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: scanning row: %w", domain.ErrCorruptLedger, err)
		}
		files.Add(name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: reading rows: %w", domain.ErrCorruptLedger, err)
	}

	return files, nil
}

// Save replaces the recorded set in a single transaction.
func (l *Ledger) Save(ctx context.Context, files domain.FileSet) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM processed_files"); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO processed_files (name) VALUES (?)")
	if err != nil {
		return fmt.Errorf("prepare ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, name := range files.Sorted() {
		if _, err := stmt.ExecContext(ctx, name); err != nil {
			return fmt.Errorf("insert ledger row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}
	return nil
}

func (l *Ledger) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := l.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := l.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := l.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}
