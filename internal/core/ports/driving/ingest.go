package driving

import (
	"context"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// IngestService runs the offline ingestion pipeline for one book:
// extraction, segmentation, chunking, embedding and indexing.
type IngestService interface {
	// IngestBook processes the PDF at path under the given book type
	// label and returns a report of what was produced. Invalid input
	// fails before anything is written; a failure later in the
	// pipeline can leave the passages already stored and lexically
	// indexed, and a re-run of the same book replaces them.
	IngestBook(ctx context.Context, path, bookType string) (*domain.IngestReport, error)
}
