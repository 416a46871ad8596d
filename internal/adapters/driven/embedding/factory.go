// Package embedding provides factory functions for creating embedding
// service adapters from configuration.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/syndexlabs/syndex-cli/internal/adapters/driven/embedding/gemini"
	"github.com/syndexlabs/syndex-cli/internal/adapters/driven/embedding/ollama"
	"github.com/syndexlabs/syndex-cli/internal/adapters/driven/embedding/openai"
	"github.com/syndexlabs/syndex-cli/internal/config"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// New creates the embedding service selected by the configuration.
func New(cfg config.Embedding) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return gemini.NewEmbeddingService(gemini.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Timeout:           cfg.Timeout,
			RequestsPerMinute: cfg.RequestsPerMinute,
		})

	case config.ProviderOpenAI:
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		})

	case config.ProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: cfg.Timeout,
		}), nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// NewValidated creates an embedding service and validates connectivity
// before returning it.
func NewValidated(cfg config.Embedding) (driven.EmbeddingService, error) {
	svc, err := New(cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("embedding service unreachable: %w", err)
	}

	return svc, nil
}
