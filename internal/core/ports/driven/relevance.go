package driven

import "github.com/psyra-labs/psyra-cli/internal/core/domain"

// RelevanceJudge decides whether retrieved passages are topically close
// enough to the query to inject as grounded context.
type RelevanceJudge interface {
	// IsRelevant reports whether any passage clears the overlap bar for
	// the query. An empty passage list is never relevant.
	IsRelevant(query string, passages []domain.Passage) bool
}

// TopicClassifier maps passage text to a topic label.
// Implementations are deterministic and side-effect free.
type TopicClassifier interface {
	// Classify returns the first matching topic label, or "General".
	Classify(text string) string
}
