package driven

import "context"

// VectorIndex provides dense similarity search over passage embeddings.
// Backed by an exact flat L2 index: the expected corpus is tens of
// thousands of passages, small enough that approximation buys nothing.
//
// The index is populated during ingestion, flushed to durable storage,
// and reopened read-only for the query path. There is no incremental
// upsert: rebuilding requires re-ingestion.
type VectorIndex interface {
	// Add inserts a vector for the given chunk ID.
	Add(ctx context.Context, chunkID string, embedding []float32) error

	// Search finds the k nearest neighbours to the query vector.
	// Results are ordered by ascending distance.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Flush persists the index to durable storage.
	Flush(ctx context.Context) error

	// Count returns the number of indexed vectors.
	Count() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched passage.
	ChunkID string

	// Distance is the L2 distance to the query vector. Lower is closer.
	Distance float64
}
