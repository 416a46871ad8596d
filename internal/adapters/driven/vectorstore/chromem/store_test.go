package chromem

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syndexlabs/syndex-cli/internal/core/domain"
)

func entriesForTest(n int) []domain.IndexEntry {
	entries := make([]domain.IndexEntry, n)
	for i := range n {
		entries[i] = domain.IndexEntry{
			Chunk: domain.Chunk{
				ID:      string(rune('a' + i)),
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

func TestNew_RequiresPersistDir(t *testing.T) {
	_, err := New("", "documents", nil)
	require.Error(t, err)
}

func TestNew_RequiresCollection(t *testing.T) {
	_, err := New(t.TempDir(), "", nil)
	require.Error(t, err)
}

func TestStore_Exists_FreshDatabase(t *testing.T) {
	store, err := New(t.TempDir(), "documents", nil)
	require.NoError(t, err)
	defer store.Close()

	exists, err := store.Exists(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStore_Replace_EstablishesCollection(t *testing.T) {
	store, err := New(t.TempDir(), "documents", nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, entriesForTest(3)))

	exists, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_Replace_SupersedesPreviousContent(t *testing.T) {
	store, err := New(t.TempDir(), "documents", nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, entriesForTest(5)))
	require.NoError(t, store.Replace(ctx, entriesForTest(2)))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_Replace_Empty(t *testing.T) {
	store, err := New(t.TempDir(), "documents", nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, nil))

	exists, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists, "empty replace still establishes the collection")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_Replace_FailureLeavesNoPartialCollection(t *testing.T) {
	store, err := New(t.TempDir(), "documents", nil)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()

	// chromem rejects documents without an ID, so one bad entry in the
	// batch makes the write fail after the collection was recreated.
	entries := entriesForTest(3)
	entries[1].Chunk.ID = ""

	require.Error(t, store.Replace(ctx, entries))

	exists, err := store.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "failed replace must leave the index absent")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := New(dir, "documents", nil)
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, entriesForTest(4)))
	require.NoError(t, store.Close())

	reopened, err := New(dir, "documents", nil)
	require.NoError(t, err)
	defer reopened.Close()

	exists, err := reopened.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestStore_Count_MissingCollection(t *testing.T) {
	store, err := New(t.TempDir(), "documents", nil)
	require.NoError(t, err)
	defer store.Close()

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
