package driven

import "context"

// EmbeddingService generates vector embeddings from text.
// This is an optional service - when nil, dense retrieval is disabled.
//
// Implementations must clip each text to a fixed token budget with a
// deterministic tokenizer before embedding, so that ingestion-time and
// query-time truncation agree. Implementations retry transient backend
// failures with bounded exponential backoff; once retries are exhausted
// the call fails with an error wrapping domain.ErrProviderFailure.
//
// Implementations may include:
//   - Jina (jina-embeddings-v3)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// EmbedDocuments generates embeddings for the given texts, batched
	// to bound request size. The result preserves input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates a single embedding for a query string.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size (e.g., 768, 1024).
	// This is determined by the model and must match the vector index.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
