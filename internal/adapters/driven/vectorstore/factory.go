// Package vectorstore provides factory functions for creating vector
// store adapters from configuration.
package vectorstore

import (
	"fmt"
	"log/slog"

	"github.com/syndexlabs/syndex-cli/internal/adapters/driven/vectorstore/chromem"
	"github.com/syndexlabs/syndex-cli/internal/adapters/driven/vectorstore/weaviate"
	"github.com/syndexlabs/syndex-cli/internal/config"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// New creates the vector store selected by the configuration.
func New(cfg config.Store, logger *slog.Logger) (driven.VectorStore, error) {
	switch cfg.Backend {
	case config.StoreChromem:
		return chromem.New(cfg.PersistDir, cfg.Collection, logger)

	case config.StoreWeaviate:
		return weaviate.New(cfg.URL, cfg.Collection, logger)

	default:
		return nil, fmt.Errorf("unsupported vector store backend: %s", cfg.Backend)
	}
}
