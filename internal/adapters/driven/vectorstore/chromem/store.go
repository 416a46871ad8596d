// Package chromem provides an embedded vector store backed by chromem-go.
// Collections persist to a local directory, so no external service is
// required.
package chromem

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store persists index entries in a chromem-go collection on disk.
type Store struct {
	db         *chromemgo.DB
	collection string
	logger     *slog.Logger
}

// New opens (or creates) the persistent database at persistDir.
func New(persistDir, collection string, logger *slog.Logger) (*Store, error) {
	if persistDir == "" {
		return nil, fmt.Errorf("chromem: persist directory is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("chromem: collection name is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := chromemgo.NewPersistentDB(persistDir, false)
	if err != nil {
		return nil, fmt.Errorf("chromem: open %s: %w", persistDir, err)
	}

	return &Store{
		db:         db,
		collection: collection,
		logger:     logger,
	}, nil
}

// Exists reports whether the collection has been persisted before.
// Opening the database creates the directory, so presence is judged by
// the collection, not the path.
func (s *Store) Exists(_ context.Context) (bool, error) {
	return s.db.GetCollection(s.collection, nil) != nil, nil
}

// Replace writes the entries as the complete new content of the
// collection. The previous collection, if any, is deleted first.
func (s *Store) Replace(ctx context.Context, entries []domain.IndexEntry) error {
	if err := s.db.DeleteCollection(s.collection); err != nil {
		return fmt.Errorf("chromem: delete collection %s: %w", s.collection, err)
	}

	coll, err := s.db.CreateCollection(s.collection, nil, nil)
	if err != nil {
		return fmt.Errorf("chromem: create collection %s: %w", s.collection, err)
	}

	if len(entries) == 0 {
		s.logger.Debug("collection replaced with no entries", "collection", s.collection)
		return nil
	}

	docs := make([]chromemgo.Document, len(entries))
	for i, entry := range entries {
		docs[i] = chromemgo.Document{
			ID:        entry.Chunk.ID,
			Content:   entry.Chunk.Content,
			Embedding: entry.Vector,
			Metadata: map[string]string{
				"source":  entry.Chunk.Source,
				"page":    strconv.Itoa(entry.Chunk.Page),
				"ordinal": strconv.Itoa(entry.Chunk.Ordinal),
				"offset":  strconv.Itoa(entry.Chunk.StartOffset),
			},
		}
	}

	if err := coll.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		// Drop the half-written collection so the index reads as
		// absent and the next run rebuilds it instead of trusting
		// partial content.
		if delErr := s.db.DeleteCollection(s.collection); delErr != nil {
			s.logger.Warn("failed to remove partial collection",
				"collection", s.collection, "error", delErr)
		}
		return fmt.Errorf("chromem: add documents: %w", err)
	}

	s.logger.Debug("collection replaced",
		"collection", s.collection,
		"entries", len(entries))

	return nil
}

// Count returns the number of entries in the collection.
func (s *Store) Count(_ context.Context) (int, error) {
	coll := s.db.GetCollection(s.collection, nil)
	if coll == nil {
		return 0, nil
	}
	return coll.Count(), nil
}

// Close releases resources. The chromem database writes through on
// every mutation, so there is nothing to flush.
func (s *Store) Close() error {
	return nil
}
