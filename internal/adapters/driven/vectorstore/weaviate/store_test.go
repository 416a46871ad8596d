package weaviate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
)

// fakeWeaviate stands in for the REST and GraphQL endpoints the store
// touches, recording requests for assertions.
type fakeWeaviate struct {
	mu          sync.Mutex
	classExists bool
	deleted     []string
	created     []string
	batched     int
	batchErr    string
	count       int
}

func (f *fakeWeaviate) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/schema/{class}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.classExists {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"class": r.PathValue("class")})
	})

	mux.HandleFunc("DELETE /v1/schema/{class}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.deleted = append(f.deleted, r.PathValue("class"))
		f.classExists = false
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("POST /v1/schema", func(w http.ResponseWriter, r *http.Request) {
		var class models.Class
		_ = json.NewDecoder(r.Body).Decode(&class)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.created = append(f.created, class.Class)
		f.classExists = true
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(class)
	})

	mux.HandleFunc("POST /v1/batch/objects", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Objects []*models.Object `json:"objects"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.batched += len(body.Objects)

		responses := make([]map[string]any, len(body.Objects))
		for i, obj := range body.Objects {
			result := map[string]any{"status": "SUCCESS"}
			if f.batchErr != "" {
				result = map[string]any{
					"errors": map[string]any{
						"error": []map[string]any{{"message": f.batchErr}},
					},
				}
			}
			responses[i] = map[string]any{
				"id":     obj.ID,
				"class":  obj.Class,
				"result": result,
			}
		}
		_ = json.NewEncoder(w).Encode(responses)
	})

	mux.HandleFunc("POST /v1/graphql", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"Aggregate": map[string]any{
					"Documents": []any{
						map[string]any{"meta": map[string]any{"count": f.count}},
					},
				},
			},
		})
	})

	return mux
}

func newTestStore(t *testing.T, fake *fakeWeaviate) *Store {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	store, err := New(server.URL, "documents", nil)
	require.NoError(t, err)
	return store
}

func storeEntries(n int) []domain.IndexEntry {
	entries := make([]domain.IndexEntry, n)
	for i := range n {
		entries[i] = domain.IndexEntry{
			Chunk: domain.Chunk{
				ID:      "00000000-0000-0000-0000-00000000000" + string(rune('0'+i)),
				Source:  "report.pdf",
				Page:    1,
				Ordinal: i,
				Content: "chunk content",
			},
			Vector: []float32{float32(i), 1.0},
		}
	}
	return entries
}

func TestNew_Validation(t *testing.T) {
	_, err := New("", "documents", nil)
	require.Error(t, err)

	_, err = New("http://localhost:8080", "", nil)
	require.Error(t, err)
}

func TestClassName_Capitalised(t *testing.T) {
	assert.Equal(t, "Documents", className("documents"))
	assert.Equal(t, "Documents", className("Documents"))
}

func TestStore_Exists(t *testing.T) {
	fake := &fakeWeaviate{}
	store := newTestStore(t, fake)

	exists, err := store.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)

	fake.classExists = true

	exists, err = store.Exists(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStore_Replace_FreshClass(t *testing.T) {
	fake := &fakeWeaviate{}
	store := newTestStore(t, fake)

	require.NoError(t, store.Replace(context.Background(), storeEntries(3)))

	assert.Empty(t, fake.deleted, "nothing to delete on first rebuild")
	assert.Equal(t, []string{"Documents"}, fake.created)
	assert.Equal(t, 3, fake.batched)
}

func TestStore_Replace_SupersedesExistingClass(t *testing.T) {
	fake := &fakeWeaviate{classExists: true}
	store := newTestStore(t, fake)

	require.NoError(t, store.Replace(context.Background(), storeEntries(2)))

	assert.Equal(t, []string{"Documents"}, fake.deleted)
	assert.Equal(t, []string{"Documents"}, fake.created)
	assert.Equal(t, 2, fake.batched)
}

func TestStore_Replace_Empty(t *testing.T) {
	fake := &fakeWeaviate{}
	store := newTestStore(t, fake)

	require.NoError(t, store.Replace(context.Background(), nil))

	assert.Equal(t, []string{"Documents"}, fake.created)
	assert.Equal(t, 0, fake.batched)
}

func TestStore_Replace_BatchError(t *testing.T) {
	fake := &fakeWeaviate{batchErr: "vector dimension mismatch"}
	store := newTestStore(t, fake)

	err := store.Replace(context.Background(), storeEntries(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector dimension mismatch")
}

func TestStore_Replace_FailureRemovesPartialClass(t *testing.T) {
	fake := &fakeWeaviate{batchErr: "vector dimension mismatch"}
	store := newTestStore(t, fake)

	require.Error(t, store.Replace(context.Background(), storeEntries(2)))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Contains(t, fake.deleted, "Documents",
		"failed replace must drop the half-filled class")
	assert.False(t, fake.classExists, "index must read as absent afterwards")
}

func TestStore_Count(t *testing.T) {
	fake := &fakeWeaviate{count: 42}
	store := newTestStore(t, fake)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

func TestParseAggregateCount_MissingClassRows(t *testing.T) {
	data := map[string]models.JSONObject{
		"Aggregate": map[string]any{"Documents": []any{}},
	}

	count, err := parseAggregateCount(data, "Documents")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestParseAggregateCount_BadShape(t *testing.T) {
	_, err := parseAggregateCount(map[string]models.JSONObject{}, "Documents")
	require.Error(t, err)
}
