package driven

import (
	"context"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// Reranker re-scores a fused candidate list with a cross-encoder.
// Selection happens once at construction time: when no rerank backend is
// configured, a no-op implementation passes the candidates through
// unchanged, so query logic never branches on configuration.
type Reranker interface {
	// Rerank re-scores the candidates for the query and returns them in
	// the new order, truncated to topN. Implementations replace each
	// score with the cross-encoder relevance score.
	Rerank(ctx context.Context, query string, candidates []domain.RankedPassage, topN int) ([]domain.RankedPassage, error)

	// ModelName returns the rerank model name, or "" for the no-op.
	ModelName() string
}
