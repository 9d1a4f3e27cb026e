package driven

import (
	"context"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// PassageStore persists the passage table.
// Backed by SQLite. The store is written by the ingestion pipeline and
// read-only from the query path.
type PassageStore interface {
	// SavePassages stores passages in one transaction.
	SavePassages(ctx context.Context, passages []domain.Passage) error

	// GetPassage retrieves a passage by chunk ID.
	GetPassage(ctx context.Context, chunkID string) (*domain.Passage, error)

	// ListPassages returns all passages for a book, ordered by sequence.
	ListPassages(ctx context.Context, bookName string) ([]domain.Passage, error)

	// ListAll returns every stored passage, ordered by book and sequence.
	ListAll(ctx context.Context) ([]domain.Passage, error)

	// DeleteBook removes all passages for a book.
	DeleteBook(ctx context.Context, bookName string) error
}
