package services

import (
	"strings"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
)

// Ensure OverlapJudge implements the interface.
var _ driven.RelevanceJudge = (*OverlapJudge)(nil)

// DefaultOverlapThreshold is the fraction of query words that must
// appear in at least one passage for the context to count as grounded.
const DefaultOverlapThreshold = 0.2

// OverlapJudge is a coarse lexical relevance gate. It guards against
// injecting semantically-near but topically-irrelevant vector hits as if
// they were grounded context.
type OverlapJudge struct {
	threshold float64
}

// NewOverlapJudge creates a judge with the default overlap threshold.
func NewOverlapJudge() *OverlapJudge {
	return &OverlapJudge{threshold: DefaultOverlapThreshold}
}

// IsRelevant reports whether any passage shares more than the threshold
// fraction of the query's words. An empty passage list is never relevant.
func (j *OverlapJudge) IsRelevant(query string, passages []domain.Passage) bool {
	if len(passages) == 0 {
		return false
	}

	queryWords := wordSet(query)
	if len(queryWords) == 0 {
		return false
	}

	for _, p := range passages {
		docWords := wordSet(p.Text)
		common := 0
		for w := range queryWords {
			if docWords[w] {
				common++
			}
		}
		if float64(common)/float64(len(queryWords)) > j.threshold {
			return true
		}
	}
	return false
}

// wordSet lower-cases and splits text into a set of words.
func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}
