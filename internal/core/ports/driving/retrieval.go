package driving

import (
	"context"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// RetrievalService serves ranked, gated passages for a query.
type RetrievalService interface {
	// Retrieve runs hybrid search for the query and returns the final
	// ranked passage list. When the relevance gate decides the retrieved
	// context is not grounded, Retrieve returns
	// domain.ErrNoRelevantContext; callers should fall back to an
	// ungrounded response rather than treat this as a failure.
	Retrieve(ctx context.Context, query string) ([]domain.RankedPassage, error)

	// FormatContext renders passages into a context body and a citations
	// block suitable for embedding into an agent prompt.
	FormatContext(passages []domain.RankedPassage) (body string, citations string)
}
