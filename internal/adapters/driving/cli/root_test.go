package cli

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetWiring clears the package-level services so initialise runs for
// real, and returns a cleanup restoring the previous wiring.
func resetWiring() func() {
	oldSync := synchroniser
	oldCorpus := corpusSource
	oldConfig := appConfig
	oldCloser := logCloser

	synchroniser = nil
	corpusSource = nil
	appConfig = nil
	logCloser = nil

	return func() {
		synchroniser = oldSync
		corpusSource = oldCorpus
		appConfig = oldConfig
		logCloser = oldCloser
	}
}

// wireTestEnv points every path-like setting at a temp directory so
// initialise never touches the working directory.
func wireTestEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SYNDEX_CORPUS_DIR", dir)
	t.Setenv("SYNDEX_LEDGER_PATH", filepath.Join(dir, "ledger.json"))
	t.Setenv("SYNDEX_STORE_PERSIST_DIR", filepath.Join(dir, "db"))
	t.Setenv("SYNDEX_EMBEDDING_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
}

func TestVersionCmd_RunsUnconfigured(t *testing.T) {
	cleanup := resetWiring()
	defer cleanup()
	wireTestEnv(t)

	// No provider key, no config file: version must still print.
	out, err := executeCommand("version")

	require.NoError(t, err)
	assert.Contains(t, out, "syndex version")
	assert.Nil(t, synchroniser, "version must not wire the adapter stack")
}

func TestInitialise_SyncPingsEmbeddingProvider(t *testing.T) {
	cleanup := resetWiring()
	defer cleanup()
	wireTestEnv(t)

	var pings atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			pings.Add(1)
		}
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	t.Setenv("SYNDEX_EMBEDDING_PROVIDER", "ollama")
	t.Setenv("SYNDEX_EMBEDDING_BASE_URL", server.URL)

	err := initialise(syncCmd)

	require.NoError(t, err)
	assert.NotNil(t, synchroniser)
	assert.Equal(t, int32(1), pings.Load(), "wiring must verify provider connectivity")
}

func TestInitialise_SyncFailsWhenProviderUnreachable(t *testing.T) {
	cleanup := resetWiring()
	defer cleanup()
	wireTestEnv(t)

	t.Setenv("SYNDEX_EMBEDDING_PROVIDER", "ollama")
	t.Setenv("SYNDEX_EMBEDDING_BASE_URL", "http://127.0.0.1:1")

	err := initialise(syncCmd)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
	assert.Nil(t, synchroniser)
}

func TestInitialise_StatusNeedsNoProviderKey(t *testing.T) {
	cleanup := resetWiring()
	defer cleanup()
	wireTestEnv(t)

	// Default provider is gemini and no key is set anywhere; the
	// read-only drift check must come up regardless.
	err := initialise(statusCmd)

	require.NoError(t, err)
	assert.NotNil(t, synchroniser)
}
