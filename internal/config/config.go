// Package config loads and validates the syndex configuration.
//
// Values are resolved in precedence order: built-in defaults, then the
// TOML config file, then environment variables. CLI flags override on
// top of the loaded config at the command layer.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/pelletier/go-toml/v2"
)

// Known backend and provider names.
const (
	LedgerFile   = "file"
	LedgerSQLite = "sqlite"

	StoreChromem  = "chromem"
	StoreWeaviate = "weaviate"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Config is the complete syndex configuration.
type Config struct {
	Corpus    Corpus    `toml:"corpus"`
	Ledger    Ledger    `toml:"ledger"`
	Chunking  Chunking  `toml:"chunking"`
	Embedding Embedding `toml:"embedding"`
	Store     Store     `toml:"store"`
	Log       Log       `toml:"log"`
}

// Corpus locates the watched document directory.
type Corpus struct {
	// Dir is the directory scanned for eligible source files.
	Dir string `toml:"dir" env:"SYNDEX_CORPUS_DIR"`

	// Excludes are doublestar globs matched against file names;
	// matching entries are skipped without a diagnostic.
	Excludes []string `toml:"excludes" env:"SYNDEX_CORPUS_EXCLUDES" envSeparator:","`
}

// Ledger locates the processed-files record.
type Ledger struct {
	// Backend is "file" (JSON flat file) or "sqlite".
	Backend string `toml:"backend" env:"SYNDEX_LEDGER_BACKEND"`

	// Path is the ledger file location.
	Path string `toml:"path" env:"SYNDEX_LEDGER_PATH"`

	// ResetOnCorrupt treats an unparseable ledger as absent, forcing a
	// full rebuild instead of aborting. Off by default: a corrupt
	// ledger fails loudly.
	ResetOnCorrupt bool `toml:"reset_on_corrupt" env:"SYNDEX_LEDGER_RESET_ON_CORRUPT"`
}

// Chunking controls the sliding window applied to extracted pages.
type Chunking struct {
	// Size is the window size in runes.
	Size int `toml:"size" env:"SYNDEX_CHUNK_SIZE"`

	// Overlap is the number of runes shared by consecutive chunks.
	// Must be smaller than Size.
	Overlap int `toml:"overlap" env:"SYNDEX_CHUNK_OVERLAP"`
}

// Embedding selects and configures the embedding backend.
type Embedding struct {
	// Provider is "gemini", "openai" or "ollama".
	Provider string `toml:"provider" env:"SYNDEX_EMBEDDING_PROVIDER"`

	// Model is the embedding model name. Empty selects the provider
	// default.
	Model string `toml:"model" env:"SYNDEX_EMBEDDING_MODEL"`

	// APIKey authenticates against hosted providers. The standard
	// GOOGLE_API_KEY / OPENAI_API_KEY variables are consulted when
	// this is empty.
	APIKey string `toml:"api_key" env:"SYNDEX_EMBEDDING_API_KEY"`

	// BaseURL overrides the provider endpoint (local proxies, Azure).
	BaseURL string `toml:"base_url" env:"SYNDEX_EMBEDDING_BASE_URL"`

	// Timeout bounds each embedding request.
	Timeout time.Duration `toml:"timeout" env:"SYNDEX_EMBEDDING_TIMEOUT"`

	// RequestsPerMinute rate-limits calls to the provider. Zero means
	// unlimited.
	RequestsPerMinute int `toml:"requests_per_minute" env:"SYNDEX_EMBEDDING_RPM"`

	// Concurrency bounds parallel embedding calls during a rebuild.
	Concurrency int `toml:"concurrency" env:"SYNDEX_EMBEDDING_CONCURRENCY"`
}

// Store selects and configures the vector store backend.
type Store struct {
	// Backend is "chromem" (embedded, persistent) or "weaviate".
	Backend string `toml:"backend" env:"SYNDEX_STORE_BACKEND"`

	// Collection names the partition holding this corpus's entries.
	Collection string `toml:"collection" env:"SYNDEX_COLLECTION"`

	// PersistDir is the chromem persistence directory.
	PersistDir string `toml:"persist_dir" env:"SYNDEX_STORE_PERSIST_DIR"`

	// URL is the Weaviate endpoint, e.g. http://localhost:8080.
	URL string `toml:"url" env:"SYNDEX_STORE_URL"`
}

// Log controls diagnostic output.
type Log struct {
	// Level is "debug", "info", "warn" or "error".
	Level string `toml:"level" env:"SYNDEX_LOG_LEVEL"`

	// Format is "text" or "json".
	Format string `toml:"format" env:"SYNDEX_LOG_FORMAT"`

	// File, when set, also appends every record to this file,
	// keeping a history of runs.
	File string `toml:"file" env:"SYNDEX_LOG_FILE"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Corpus: Corpus{Dir: "docs"},
		Ledger: Ledger{Backend: LedgerFile, Path: "processed_files.json"},
		Chunking: Chunking{
			Size:    5000,
			Overlap: 2000,
		},
		Embedding: Embedding{
			Provider:    ProviderGemini,
			Timeout:     60 * time.Second,
			Concurrency: 4,
		},
		Store: Store{
			Backend:    StoreChromem,
			Collection: "documents",
			PersistDir: "chroma_db",
		},
		Log: Log{Level: "info", Format: "text"},
	}
}

// Load builds the effective configuration: defaults, overlaid with the
// TOML file at path (if it exists), overlaid with environment
// variables. A missing file is not an error; an unreadable or invalid
// one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No config file is fine; defaults plus env apply.
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	// Fall through to the conventional provider key variables.
	if cfg.Embedding.APIKey == "" {
		switch cfg.Embedding.Provider {
		case ProviderGemini:
			cfg.Embedding.APIKey = os.Getenv("GOOGLE_API_KEY")
		case ProviderOpenAI:
			cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Corpus.Dir == "" {
		return fmt.Errorf("corpus.dir must not be empty")
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger.path must not be empty")
	}
	switch c.Ledger.Backend {
	case LedgerFile, LedgerSQLite:
	default:
		return fmt.Errorf("unknown ledger backend: %s", c.Ledger.Backend)
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("chunking.size must be positive, got %d", c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("chunking.overlap must be in [0, size), got %d with size %d",
			c.Chunking.Overlap, c.Chunking.Size)
	}
	switch c.Embedding.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderOllama:
	default:
		return fmt.Errorf("unknown embedding provider: %s", c.Embedding.Provider)
	}
	if c.Embedding.Concurrency < 1 {
		return fmt.Errorf("embedding.concurrency must be at least 1, got %d", c.Embedding.Concurrency)
	}
	switch c.Store.Backend {
	case StoreChromem:
		if c.Store.PersistDir == "" {
			return fmt.Errorf("store.persist_dir must not be empty for the chromem backend")
		}
	case StoreWeaviate:
		if c.Store.URL == "" {
			return fmt.Errorf("store.url must not be empty for the weaviate backend")
		}
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}
	if c.Store.Collection == "" {
		return fmt.Errorf("store.collection must not be empty")
	}
	return nil
}
