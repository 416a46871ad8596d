// Package filesystem provides the corpus source backed by a local
// directory.
package filesystem

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// Ensure Connector implements the interface.
var _ driven.CorpusSource = (*Connector)(nil)

// Connector enumerates eligible files in a watched directory. Only the
// directory's immediate regular files are considered; subdirectories
// are ignored.
type Connector struct {
	dir        string
	extensions map[string]struct{}
	excludes   []string
	logger     *slog.Logger
	watcher    *fsnotify.Watcher
}

// Option configures the connector.
type Option func(*Connector)

// WithExcludes sets doublestar glob patterns matched against file
// names. Matching entries are skipped without a diagnostic.
func WithExcludes(patterns []string) Option {
	return func(c *Connector) {
		c.excludes = patterns
	}
}

// WithLogger sets the connector's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) {
		c.logger = logger
	}
}

// New creates a connector over dir. Extensions are the eligible file
// extensions, lower-case with the leading dot (e.g. ".pdf").
func New(dir string, extensions []string, opts ...Option) *Connector {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}

	c := &Connector{
		dir:        dir,
		extensions: exts,
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Validate checks that the watched directory exists and is a directory.
func (c *Connector) Validate(_ context.Context) error {
	info, err := os.Stat(c.dir)
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", domain.ErrCorpusNotFound, c.dir)
	}
	if err != nil {
		return fmt.Errorf("stat corpus directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", domain.ErrCorpusNotFound, c.dir)
	}
	return nil
}

// Scan returns the eligible files in lexicographic name order together
// with the entries that were recognised but skipped. Entries with no
// extension and entries with an unsupported extension are reported as
// skipped, never silently dropped.
func (c *Connector) Scan(ctx context.Context) (*domain.ScanResult, error) {
	if err := c.Validate(ctx); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	result := &domain.ScanResult{}

	// os.ReadDir returns entries sorted by name, which fixes the
	// cross-document processing order.
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()

		if c.excluded(name) {
			c.logger.Debug("entry excluded by pattern", "file", name)
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		switch {
		case ext == "":
			result.Skipped = append(result.Skipped, domain.SkippedFile{
				Name:   name,
				Reason: domain.ErrMissingExtension,
			})
		case !c.eligible(ext):
			result.Skipped = append(result.Skipped, domain.SkippedFile{
				Name:   name,
				Reason: domain.ErrUnsupportedFile,
			})
		default:
			result.Files = append(result.Files, domain.SourceFile{
				Name: name,
				Path: filepath.Join(c.dir, name),
			})
		}
	}

	return result, nil
}

// Watch emits an event for every filesystem change under the watched
// directory until ctx is cancelled.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.CorpusEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(c.dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", c.dir, err)
	}
	c.watcher = watcher

	events := make(chan domain.CorpusEvent)

	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				out := domain.CorpusEvent{
					Name: filepath.Base(ev.Name),
					Op:   ev.Op.String(),
				}
				select {
				case events <- out:
				case <-ctx.Done():
					return
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Warn("watch error", "error", err)
			}
		}
	}()

	return events, nil
}

// Close releases the watcher, if one is active.
func (c *Connector) Close() error {
	if c.watcher != nil {
		return c.watcher.Close()
	}
	return nil
}

func (c *Connector) eligible(ext string) bool {
	_, ok := c.extensions[ext]
	return ok
}

func (c *Connector) excluded(name string) bool {
	for _, pattern := range c.excludes {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
