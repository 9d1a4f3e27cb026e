// Package segmenter converts layout-aware page text into section-tagged
// paragraphs using a document-specific heading font threshold.
package segmenter

import "github.com/psyra-labs/psyra-cli/internal/core/domain"

// Default sampling parameters for the font-threshold estimator.
const (
	// DefaultSkipPages is how many leading pages to skip before
	// sampling. Front matter (title pages, tables of contents) skews
	// the mean font size.
	DefaultSkipPages = 131

	// DefaultSamplePages is the size of the sampling window.
	DefaultSamplePages = 20

	// DefaultBuffer is added to the sampled mean to separate headings
	// from large body text.
	DefaultBuffer = 2.0

	// DefaultFallbackThreshold is used when the sample window yields no
	// spans, e.g. for very short documents.
	DefaultFallbackThreshold = 14.0
)

// Estimator computes a heading font-size threshold from a sample of
// document pages. A document with zero extractable spans degrades to the
// fallback threshold, never an error.
type Estimator struct {
	skipPages   int
	samplePages int
	buffer      float64
	fallback    float64
}

// EstimatorOption configures the estimator.
type EstimatorOption func(*Estimator)

// WithSampleWindow sets the pages to skip and the sample size.
func WithSampleWindow(skip, sample int) EstimatorOption {
	return func(e *Estimator) {
		if skip >= 0 {
			e.skipPages = skip
		}
		if sample > 0 {
			e.samplePages = sample
		}
	}
}

// WithBuffer sets the margin added to the sampled mean.
func WithBuffer(buffer float64) EstimatorOption {
	return func(e *Estimator) {
		e.buffer = buffer
	}
}

// NewEstimator creates a font-threshold estimator.
func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		skipPages:   DefaultSkipPages,
		samplePages: DefaultSamplePages,
		buffer:      DefaultBuffer,
		fallback:    DefaultFallbackThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate computes the heading threshold for the document:
// mean(sampled font sizes) + buffer, or the fallback when the sample
// window contains no spans.
func (e *Estimator) Estimate(pages []domain.Page) float64 {
	start := e.skipPages
	if start > len(pages) {
		start = len(pages)
	}
	end := start + e.samplePages
	if end > len(pages) {
		end = len(pages)
	}

	var sum float64
	var count int
	for _, page := range pages[start:end] {
		for _, line := range page.Lines {
			for _, span := range line.Spans {
				if span.FontSize > 0 {
					sum += span.FontSize
					count++
				}
			}
		}
	}

	if count == 0 {
		return e.fallback
	}
	return sum/float64(count) + e.buffer
}
