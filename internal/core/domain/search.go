package domain

import "time"

// RetrievalOptions configures the hybrid ranker for one query.
type RetrievalOptions struct {
	// DenseK is the candidate count requested from the vector index.
	DenseK int

	// LexicalK is the candidate count requested from the lexical index.
	LexicalK int

	// DenseWeight scales normalised dense scores during fusion.
	DenseWeight float64

	// LexicalWeight scales normalised lexical scores during fusion.
	LexicalWeight float64

	// RerankTopN bounds the candidate set passed to the cross-encoder.
	RerankTopN int

	// ScoreThreshold drops results scoring below it after fusion/rerank.
	ScoreThreshold float64

	// TopK truncates the final ranked list.
	TopK int
}

// DefaultRetrievalOptions returns the standard retrieval configuration.
func DefaultRetrievalOptions() RetrievalOptions {
	return RetrievalOptions{
		DenseK:         5,
		LexicalK:       5,
		DenseWeight:    0.7,
		LexicalWeight:  0.3,
		RerankTopN:     5,
		ScoreThreshold: 0.01,
		TopK:           3,
	}
}

// IngestReport summarises one completed book ingestion.
type IngestReport struct {
	// RunID uniquely identifies the ingestion run.
	RunID string

	// BookName is the ingested book's name (file stem).
	BookName string

	// BookType is the caller-supplied label.
	BookType string

	// Pages is the number of pages extracted.
	Pages int

	// Paragraphs is the number of paragraphs the segmenter emitted.
	Paragraphs int

	// Passages is the number of passages written to the store.
	Passages int

	// FontThreshold is the heading threshold used for this document.
	FontThreshold float64

	// CreatedAt is when the run completed.
	CreatedAt time.Time
}
