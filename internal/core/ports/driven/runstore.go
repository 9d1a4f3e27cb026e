package driven

import (
	"context"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// RunStore persists ingest run reports so past ingestions can be
// inspected from the CLI.
type RunStore interface {
	// SaveReport records the outcome of one ingest run.
	SaveReport(ctx context.Context, report domain.IngestReport) error

	// ListReports returns all recorded runs, newest first.
	ListReports(ctx context.Context) ([]domain.IngestReport, error)
}
