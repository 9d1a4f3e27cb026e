package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as a
	// missing PDF or a passage table with missing columns. Ingestion
	// aborts on this error without writing partial output.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderFailure indicates an embedding or rerank backend failed
	// after retry exhaustion. Fatal at ingestion time; recoverable on the
	// query path where the service degrades to the remaining signals.
	ErrProviderFailure = errors.New("provider failure")

	// ErrIndexLoad indicates a persisted index is missing or corrupt.
	// Fatal at process start.
	ErrIndexLoad = errors.New("index load failed")

	// ErrEmbeddingUnavailable indicates no embedding service is
	// configured. Dense retrieval is disabled without one.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankerUnavailable indicates no rerank backend is configured.
	ErrRerankerUnavailable = errors.New("reranker unavailable")

	// ErrNoRelevantContext is the relevance gate's miss outcome. It is a
	// normal result, not a failure: the caller should fall back to an
	// ungrounded response instead of injecting weak passages.
	ErrNoRelevantContext = errors.New("no relevant context")
)
