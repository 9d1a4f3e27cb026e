package driven

import (
	"context"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// PageExtractor produces layout-aware page text from a source document.
// The extractor validates the input first; an unreadable or malformed
// file fails with an error wrapping domain.ErrInvalidInput.
type PageExtractor interface {
	// Extract reads the document at path and returns its pages with
	// per-span font sizes, in page order.
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}
