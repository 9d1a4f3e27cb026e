// Package cli implements the psyra command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/config/file"
	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/embedding/jina"
	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/embedding/ollama"
	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/index/bm25"
	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/index/flat"
	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/rerank/cohere"
	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/rerank/noop"
	"github.com/psyra-labs/psyra-cli/internal/adapters/driven/storage/sqlite"
	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driving"
	"github.com/psyra-labs/psyra-cli/internal/core/services"
	"github.com/psyra-labs/psyra-cli/internal/ingest/chunker"
	"github.com/psyra-labs/psyra-cli/internal/ingest/pdf"
	"github.com/psyra-labs/psyra-cli/internal/ingest/segmenter"
	"github.com/psyra-labs/psyra-cli/internal/ingest/topic"
	"github.com/psyra-labs/psyra-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose bool
	dataDir string
)

// Services and stores wired during startup and shared by the commands.
var (
	configStore      driven.ConfigStore
	passageStore     driven.PassageStore
	runStore         driven.RunStore
	retrievalService driving.RetrievalService
	ingestService    driving.IngestService

	metadataStore *sqlite.Store
)

var rootCmd = &cobra.Command{
	Use:   "psyra",
	Short: "Psychoeducation library search",
	Long: `psyra ingests clinical reference books into a local library and
answers queries with hybrid retrieval: dense vector search and BM25
keyword search fused together, optionally re-scored by a cross-encoder.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if metadataStore != nil {
			metadataStore.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.psyra/data)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SetVersion sets the version string shown by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// initServices wires the storage, indexes and providers behind the
// driving services. Provider selection happens once here: commands
// never branch on configuration.
func initServices() error {
	var err error
	configStore, err = file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	metadataStore, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	passageStore = metadataStore.PassageStore()
	runStore = metadataStore.RunStore()

	dir, err := resolveDataDir()
	if err != nil {
		return err
	}
	vectors, err := flat.Open(filepath.Join(dir, "vectors.idx"))
	if err != nil {
		return fmt.Errorf("open vector index: %w", err)
	}

	lexical, err := rebuildLexicalIndex()
	if err != nil {
		return fmt.Errorf("build lexical index: %w", err)
	}

	embedder, err := selectEmbedder()
	if err != nil {
		return err
	}
	reranker, err := selectReranker()
	if err != nil {
		return err
	}

	retrievalService = services.NewRetrievalService(
		passageStore,
		vectors,
		lexical,
		embedder,
		reranker,
		services.NewOverlapJudge(),
		retrievalOptions(),
	)

	ingestService = services.NewIngestService(
		pdf.NewExtractor(),
		segmenter.NewEstimator(),
		newChunker(),
		passageStore,
		runStore,
		vectors,
		lexical,
		embedder,
	)

	return nil
}

// retrievalOptions applies config file overrides on top of the default
// retrieval parameters. Unset keys read as zero and leave the defaults
// in place.
func retrievalOptions() domain.RetrievalOptions {
	opts := domain.DefaultRetrievalOptions()
	if w := configStore.GetFloat("retrieval.dense_weight"); w > 0 {
		opts.DenseWeight = w
	}
	if w := configStore.GetFloat("retrieval.lexical_weight"); w > 0 {
		opts.LexicalWeight = w
	}
	if k := configStore.GetInt("retrieval.top_k"); k > 0 {
		opts.TopK = k
	}
	return opts
}

// newChunker builds the chunker with any configured chunking overrides.
func newChunker() *chunker.Chunker {
	var opts []chunker.Option
	if size := configStore.GetInt("chunking.chunk_size"); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap := configStore.GetInt("chunking.chunk_overlap"); overlap > 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	return chunker.New(topic.New(), opts...)
}

// rebuildLexicalIndex loads every stored passage into a fresh BM25
// index. At library scale this takes milliseconds and keeps the index
// exactly consistent with the store.
func rebuildLexicalIndex() (driven.LexicalIndex, error) {
	index := bm25.New()
	ctx := context.Background()
	passages, err := passageStore.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range passages {
		if err := index.Index(ctx, passages[i]); err != nil {
			return nil, err
		}
	}
	logger.Debug("Lexical index: %d passages", index.Count())
	return index, nil
}

// selectEmbedder picks the embedding backend: Jina when an API key is
// present, Ollama when a base URL is configured, otherwise none.
// Environment variables take precedence over the config file.
func selectEmbedder() (driven.EmbeddingService, error) {
	if key := configValue("JINA_API_KEY", "embedding.jina_api_key"); key != "" {
		svc, err := jina.NewEmbeddingService(jina.Config{
			APIKey: key,
			Model:  configStore.GetString("embedding.model"),
		})
		if err != nil {
			return nil, fmt.Errorf("configure jina: %w", err)
		}
		logger.Debug("Embedding backend: jina (%s)", svc.ModelName())
		return svc, nil
	}

	if url := configValue("OLLAMA_BASE_URL", "embedding.ollama_base_url"); url != "" {
		svc, err := ollama.NewEmbeddingService(ollama.Config{
			BaseURL: url,
			Model:   configStore.GetString("embedding.model"),
		})
		if err != nil {
			return nil, fmt.Errorf("configure ollama: %w", err)
		}
		logger.Debug("Embedding backend: ollama (%s)", svc.ModelName())
		return svc, nil
	}

	logger.Debug("Embedding backend: none, lexical search only")
	return nil, nil
}

// selectReranker picks the Cohere cross-encoder when an API key is
// present, otherwise the pass-through implementation.
func selectReranker() (driven.Reranker, error) {
	key := configValue("COHERE_API_KEY", "rerank.cohere_api_key")
	if key == "" {
		return noop.NewReranker(), nil
	}
	r, err := cohere.NewReranker(cohere.Config{
		APIKey: key,
		Model:  configStore.GetString("rerank.model"),
	})
	if err != nil {
		return nil, fmt.Errorf("configure cohere: %w", err)
	}
	logger.Debug("Rerank backend: cohere (%s)", r.ModelName())
	return r, nil
}

// configValue reads an environment variable, falling back to the
// config file key.
func configValue(envKey, configKey string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configStore.GetString(configKey)
}

// resolveDataDir returns the effective data directory.
func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".psyra", "data"), nil
}
