// Package cli implements the command-line interface. Commands call
// into the core through the driving ports; all wiring of adapters
// happens here.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/syndexlabs/syndex-cli/internal/adapters/driven/embedding"
	fileledger "github.com/syndexlabs/syndex-cli/internal/adapters/driven/ledger/file"
	sqliteledger "github.com/syndexlabs/syndex-cli/internal/adapters/driven/ledger/sqlite"
	"github.com/syndexlabs/syndex-cli/internal/adapters/driven/vectorstore"
	"github.com/syndexlabs/syndex-cli/internal/config"
	"github.com/syndexlabs/syndex-cli/internal/connectors/filesystem"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driven"
	"github.com/syndexlabs/syndex-cli/internal/core/ports/driving"
	"github.com/syndexlabs/syndex-cli/internal/core/services"
	"github.com/syndexlabs/syndex-cli/internal/extractors"
	pdfextractor "github.com/syndexlabs/syndex-cli/internal/extractors/pdf"
	"github.com/syndexlabs/syndex-cli/internal/logging"
	"github.com/syndexlabs/syndex-cli/internal/postprocessors"
	"github.com/syndexlabs/syndex-cli/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services used by commands. Initialised in PersistentPreRunE; tests
// inject mocks directly.
var (
	synchroniser driving.Synchroniser
	corpusSource driven.CorpusSource
	appConfig    *config.Config
	logCloser    io.Closer
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "syndex",
	Short: "Keep a vector index in step with a document directory",
	Long: `Syndex scans a directory of documents, compares it against the
record of the last indexed run, and rebuilds the vector index when the
directory has changed. The record is only updated after the index has
been written, so an interrupted run is retried in full.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Already wired (tests inject their own services).
		if synchroniser != nil {
			return nil
		}
		switch cmd.Name() {
		// These touch no adapter; they must work on an unconfigured
		// machine.
		case "version", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return nil
		}
		return initialise(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if corpusSource != nil {
			corpusSource.Close()
		}
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the TOML config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initialise loads configuration and wires every adapter into the
// synchroniser.
func initialise(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appConfig = cfg

	logger, closer, err := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	logCloser = closer

	registry := extractors.NewRegistry()
	registry.Register(pdfextractor.New())

	corpusSource = filesystem.New(cfg.Corpus.Dir, registry.Extensions(),
		filesystem.WithExcludes(cfg.Corpus.Excludes),
		filesystem.WithLogger(logging.WithComponent(logger, "corpus")),
	)

	ledger, err := newLedger(cfg)
	if err != nil {
		return err
	}

	pipeline := postprocessors.NewPipeline(chunker.New(
		chunker.WithChunkSize(cfg.Chunking.Size),
		chunker.WithOverlap(cfg.Chunking.Overlap),
	))

	// Only commands that rebuild need an embedder; status and the
	// drift check must stay usable without provider credentials. The
	// factory pings the provider so a bad key or unreachable endpoint
	// fails here, before any rebuild is committed to.
	var embedder driven.EmbeddingService
	if cmd.Name() == "sync" || cmd.Name() == "watch" {
		embedder, err = embedding.NewValidated(cfg.Embedding)
		if err != nil {
			return fmt.Errorf("create embedding service: %w", err)
		}
	}

	store, err := vectorstore.New(cfg.Store, logging.WithComponent(logger, "store"))
	if err != nil {
		return fmt.Errorf("create vector store: %w", err)
	}

	opts := []services.Option{
		services.WithConcurrency(cfg.Embedding.Concurrency),
		services.WithProgress(newProgress(cmd.ErrOrStderr())),
	}
	if cfg.Ledger.ResetOnCorrupt {
		opts = append(opts, services.WithResetOnCorrupt())
	}

	synchroniser = services.NewSynchroniser(
		corpusSource,
		ledger,
		registry,
		pipeline,
		embedder,
		store,
		logging.WithComponent(logger, "sync"),
		opts...,
	)

	return nil
}

// newLedger creates the ledger store selected by the configuration.
func newLedger(cfg *config.Config) (driven.LedgerStore, error) {
	switch cfg.Ledger.Backend {
	case config.LedgerFile:
		return fileledger.New(cfg.Ledger.Path), nil
	case config.LedgerSQLite:
		ledger, err := sqliteledger.New(cfg.Ledger.Path)
		if err != nil {
			return nil, fmt.Errorf("open ledger database: %w", err)
		}
		return ledger, nil
	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", cfg.Ledger.Backend)
	}
}
