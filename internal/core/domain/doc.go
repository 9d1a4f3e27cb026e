// Package domain defines the core business entities for Psyra's
// ingestion and retrieval pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Page, Line, Span: layout-aware text extracted from a PDF
//   - Paragraph: a section-tagged unit produced by the segmenter
//   - Passage: the persisted, metadata-rich unit of retrieval
//   - RankedPassage: a scored passage returned by the hybrid ranker
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
