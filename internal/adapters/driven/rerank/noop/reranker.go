// Package noop provides a pass-through reranker for setups without a
// rerank backend. Wiring it in keeps the query pipeline free of
// configuration branches.
package noop

import (
	"context"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
)

// Ensure Reranker implements the interface.
var _ driven.Reranker = (*Reranker)(nil)

// Reranker returns candidates unchanged.
type Reranker struct{}

func NewReranker() *Reranker {
	return &Reranker{}
}

// Rerank passes the candidates through with their fused scores intact.
// topN is ignored: without a cross-encoder there is no basis for
// cutting the list here, the final TopK truncation handles it.
func (r *Reranker) Rerank(_ context.Context, _ string, candidates []domain.RankedPassage, _ int) ([]domain.RankedPassage, error) {
	return candidates, nil
}

// ModelName returns "" to signal that no rerank model is in use.
func (r *Reranker) ModelName() string {
	return ""
}
