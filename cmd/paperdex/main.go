// Command paperdex indexes research papers for local semantic search.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/paperdex/paperdex-cli/internal/adapters/driven/config/file"
	"github.com/paperdex/paperdex-cli/internal/adapters/driven/embedding"
	"github.com/paperdex/paperdex-cli/internal/adapters/driven/index/flat"
	"github.com/paperdex/paperdex-cli/internal/adapters/driven/storage/sqlite"
	"github.com/paperdex/paperdex-cli/internal/adapters/driving/cli"
	"github.com/paperdex/paperdex-cli/internal/core/ports/driven"
	"github.com/paperdex/paperdex-cli/internal/core/services"
	"github.com/paperdex/paperdex-cli/internal/normalisers"
	"github.com/paperdex/paperdex-cli/internal/normalisers/metadata"
	"github.com/paperdex/paperdex-cli/internal/postprocessors"
)

// version is overridden at build time via
// -ldflags "-X main.version=...".
var version = "dev"

const indexFileName = "index.bin"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := sqlite.NewStore(cfg.GetString("storage.data_dir"))
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	settings := embedding.SettingsFromConfig(cfg)
	embedder, err := embedding.New(settings)
	if err != nil {
		return err
	}
	defer embedder.Close()

	indexPath := filepath.Join(filepath.Dir(store.Path()), indexFileName)
	idx, err := flat.Open(indexPath, embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		return err
	}

	extractor := normalisers.DefaultRegistry()
	parser := metadata.New()

	ingest := services.NewIngestService(store, idx, embedder, pipeline, extractor, parser)
	if workers := cfg.GetInt("ingest.workers"); workers > 0 {
		ingest.SetWorkers(workers)
	}
	retrieve := services.NewRetrieveService(store, idx, embedder)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Ingest:   ingest,
		Retrieve: retrieve,
		PersistIndex: func() error {
			return idx.Save(indexPath)
		},
		SupportsFile: extractor.Supports,
		ValidateEmbedding: func() error {
			return embedding.Validate(settings)
		},
	})

	return cli.ExecuteContext(ctx)
}

// buildPipeline constructs the chunking pipeline from configuration.
func buildPipeline(cfg driven.ConfigStore) (*postprocessors.Pipeline, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	chunkCfg := make(map[string]any)
	if size := cfg.GetInt("chunking.chunk_size"); size > 0 {
		chunkCfg["chunk_size"] = size
	}
	if overlap := cfg.GetInt("chunking.overlap"); overlap > 0 {
		chunkCfg["overlap"] = overlap
	}

	chunker, err := registry.Build("chunker", chunkCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure chunking: %w", err)
	}

	return postprocessors.NewPipeline(chunker), nil
}
