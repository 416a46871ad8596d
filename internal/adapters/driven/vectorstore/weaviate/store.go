// Package weaviate provides a vector store backed by a remote Weaviate
// instance. Each rebuild replaces the class wholesale, so the class
// only ever reflects one complete corpus scan.
package weaviate

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// batchSize bounds objects per batch insert request.
const batchSize = 100

// Store persists index entries in a Weaviate class.
type Store struct {
	client *weaviate.Client
	class  string
	logger *slog.Logger
}

// New connects to the Weaviate instance at url. The collection name is
// normalised to a valid class name (leading capital).
func New(url, collection string, logger *slog.Logger) (*Store, error) {
	if url == "" {
		return nil, fmt.Errorf("weaviate: URL is required")
	}
	if collection == "" {
		return nil, fmt.Errorf("weaviate: collection name is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := weaviate.Config{
		Host:   url,
		Scheme: "http",
	}
	if rest, ok := strings.CutPrefix(url, "https://"); ok {
		cfg.Scheme = "https"
		cfg.Host = rest
	} else if rest, ok := strings.CutPrefix(url, "http://"); ok {
		cfg.Host = rest
	}

	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate: create client: %w", err)
	}

	return &Store{
		client: client,
		class:  className(collection),
		logger: logger,
	}, nil
}

// className converts a collection name into a Weaviate class name,
// which must begin with an uppercase letter.
func className(collection string) string {
	runes := []rune(collection)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Exists reports whether the class is present in the schema.
func (s *Store) Exists(ctx context.Context) (bool, error) {
	exists, err := s.client.Schema().ClassExistenceChecker().
		WithClassName(s.class).
		Do(ctx)
	if err != nil {
		return false, fmt.Errorf("weaviate: check class %s: %w", s.class, err)
	}
	return exists, nil
}

// Replace recreates the class and inserts the entries in batches.
func (s *Store) Replace(ctx context.Context, entries []domain.IndexEntry) error {
	exists, err := s.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		if err := s.client.Schema().ClassDeleter().WithClassName(s.class).Do(ctx); err != nil {
			return fmt.Errorf("weaviate: delete class %s: %w", s.class, err)
		}
	}

	class := &models.Class{
		Class:      s.class,
		Vectorizer: "none", // vectors are supplied with each object
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "source", DataType: []string{"text"}},
			{Name: "page", DataType: []string{"int"}},
			{Name: "ordinal", DataType: []string{"int"}},
			{Name: "offset", DataType: []string{"int"}},
		},
	}
	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("weaviate: create class %s: %w", s.class, err)
	}

	for start := 0; start < len(entries); start += batchSize {
		end := min(start+batchSize, len(entries))
		if err := s.insertBatch(ctx, entries[start:end]); err != nil {
			// Drop the half-filled class so the index reads as absent
			// and the next run rebuilds it instead of trusting partial
			// content.
			if delErr := s.client.Schema().ClassDeleter().WithClassName(s.class).Do(ctx); delErr != nil {
				s.logger.Warn("failed to remove partial class",
					"class", s.class, "error", delErr)
			}
			return err
		}
	}

	s.logger.Debug("class replaced",
		"class", s.class,
		"entries", len(entries))

	return nil
}

func (s *Store) insertBatch(ctx context.Context, entries []domain.IndexEntry) error {
	objects := make([]*models.Object, len(entries))
	for i, entry := range entries {
		objects[i] = &models.Object{
			Class:  s.class,
			ID:     strfmt.UUID(entry.Chunk.ID),
			Vector: models.C11yVector(entry.Vector),
			Properties: map[string]any{
				"content": entry.Chunk.Content,
				"source":  entry.Chunk.Source,
				"page":    entry.Chunk.Page,
				"ordinal": entry.Chunk.Ordinal,
				"offset":  entry.Chunk.StartOffset,
			},
		}
	}

	responses, err := s.client.Batch().ObjectsBatcher().
		WithObjects(objects...).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate: batch insert: %w", err)
	}

	for _, resp := range responses {
		if resp.Result != nil && resp.Result.Errors != nil && len(resp.Result.Errors.Error) > 0 {
			return fmt.Errorf("weaviate: insert object %s: %s",
				resp.ID, resp.Result.Errors.Error[0].Message)
		}
	}

	return nil
}

// Count returns the number of objects in the class via a meta
// aggregation query.
func (s *Store) Count(ctx context.Context) (int, error) {
	meta := graphql.Field{
		Name:   "meta",
		Fields: []graphql.Field{{Name: "count"}},
	}

	resp, err := s.client.GraphQL().Aggregate().
		WithClassName(s.class).
		WithFields(meta).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("weaviate: aggregate %s: %w", s.class, err)
	}
	if len(resp.Errors) > 0 {
		return 0, fmt.Errorf("weaviate: aggregate %s: %s", s.class, resp.Errors[0].Message)
	}

	return parseAggregateCount(resp.Data, s.class)
}

// parseAggregateCount digs the meta count out of a GraphQL aggregate
// response body.
func parseAggregateCount(data map[string]models.JSONObject, class string) (int, error) {
	aggregate, ok := data["Aggregate"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("weaviate: unexpected aggregate response shape")
	}
	rows, ok := aggregate[class].([]any)
	if !ok || len(rows) == 0 {
		return 0, nil
	}
	row, ok := rows[0].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("weaviate: unexpected aggregate row shape")
	}
	meta, ok := row["meta"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("weaviate: aggregate row missing meta")
	}

	switch count := meta["count"].(type) {
	case float64:
		return int(count), nil
	case string:
		n, err := strconv.Atoi(count)
		if err != nil {
			return 0, fmt.Errorf("weaviate: parse count %q: %w", count, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("weaviate: aggregate meta missing count")
	}
}

// Close releases resources. The client is stateless HTTP.
func (s *Store) Close() error {
	return nil
}
