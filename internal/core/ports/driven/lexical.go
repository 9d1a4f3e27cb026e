package driven

import (
	"context"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// LexicalIndex provides sparse term-frequency search over passage text.
// Backed by an in-memory BM25 index built from the passage store at
// startup and read-only afterwards.
type LexicalIndex interface {
	// Index adds a passage to the lexical index.
	Index(ctx context.Context, passage domain.Passage) error

	// Search scores passages against the query terms and returns the
	// top matches ordered by descending score.
	Search(ctx context.Context, query string, k int) ([]LexicalHit, error)

	// Close releases resources.
	Close() error
}

// LexicalHit represents a lexical search result.
type LexicalHit struct {
	// ChunkID is the matched passage.
	ChunkID string

	// Score is the BM25 relevance score.
	Score float64
}
