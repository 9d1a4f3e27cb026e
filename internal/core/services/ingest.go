package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driving"
	"github.com/psyra-labs/psyra-cli/internal/ingest/chunker"
	"github.com/psyra-labs/psyra-cli/internal/ingest/segmenter"
	"github.com/psyra-labs/psyra-cli/internal/logger"
)

var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize caps how many passages are sent to the embedding
// backend in one request.
const embedBatchSize = 64

// IngestService turns a source document into indexed passages:
// extraction, layout-aware segmentation, chunking, embedding and
// persistence into the passage store and both indexes.
type IngestService struct {
	extractor driven.PageExtractor
	estimator *segmenter.Estimator
	chunker   *chunker.Chunker
	store     driven.PassageStore
	runs      driven.RunStore
	vectors   driven.VectorIndex
	lexical   driven.LexicalIndex
	embedder  driven.EmbeddingService
}

// NewIngestService creates an ingest service. The vectors and embedder
// parameters are optional: without them ingestion still populates the
// passage store and lexical index, and dense retrieval is unavailable
// until the book is re-ingested with an embedding backend configured.
func NewIngestService(
	extractor driven.PageExtractor,
	estimator *segmenter.Estimator,
	ch *chunker.Chunker,
	store driven.PassageStore,
	runs driven.RunStore,
	vectors driven.VectorIndex,
	lexical driven.LexicalIndex,
	embedder driven.EmbeddingService,
) *IngestService {
	return &IngestService{
		extractor: extractor,
		estimator: estimator,
		chunker:   ch,
		store:     store,
		runs:      runs,
		vectors:   vectors,
		lexical:   lexical,
		embedder:  embedder,
	}
}

// IngestBook runs the full ingestion pipeline for a single document.
// The book name is derived from the file name without its extension.
// Re-ingesting a book replaces its previous passages and index entries.
func (s *IngestService) IngestBook(ctx context.Context, path, bookType string) (*domain.IngestReport, error) {
	bookName := bookNameFromPath(path)
	report := &domain.IngestReport{
		RunID:    uuid.NewString(),
		BookName: bookName,
		BookType: bookType,
	}

	logger.Section("Ingest: " + bookName)
	logger.Debug("Run %s, source %s", report.RunID, path)

	pages, err := s.extractor.Extract(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("extract pages: %w", err)
	}
	report.Pages = len(pages)
	logger.Info("Extracted %d pages", len(pages))

	threshold := s.estimator.Estimate(pages)
	report.FontThreshold = threshold
	logger.Debug("Heading font threshold: %.2f", threshold)

	seg := segmenter.New(threshold)
	paragraphs := seg.Segment(pages)
	report.Paragraphs = len(paragraphs)
	logger.Info("Segmented into %d paragraphs", len(paragraphs))

	passages := s.chunker.ChunkBook(paragraphs, bookName, bookType)
	report.Passages = len(passages)
	logger.Info("Chunked into %d passages", len(passages))
	if len(passages) == 0 {
		return s.finish(ctx, report)
	}

	if err := s.store.DeleteBook(ctx, bookName); err != nil {
		return nil, fmt.Errorf("clear previous ingest: %w", err)
	}
	if err := s.store.SavePassages(ctx, passages); err != nil {
		return nil, fmt.Errorf("save passages: %w", err)
	}

	if err := s.indexLexical(ctx, passages); err != nil {
		return nil, fmt.Errorf("lexical index: %w", err)
	}
	if err := s.indexDense(ctx, passages); err != nil {
		return nil, fmt.Errorf("dense index: %w", err)
	}

	return s.finish(ctx, report)
}

// finish stamps and records the run report. A report that cannot be
// recorded does not fail the ingestion itself.
func (s *IngestService) finish(ctx context.Context, report *domain.IngestReport) (*domain.IngestReport, error) {
	report.CreatedAt = time.Now().UTC()
	if s.runs != nil {
		if err := s.runs.SaveReport(ctx, *report); err != nil {
			logger.Warn("Record ingest run %s: %v", report.RunID, err)
		}
	}
	return report, nil
}

func (s *IngestService) indexLexical(ctx context.Context, passages []domain.Passage) error {
	if s.lexical == nil {
		return nil
	}
	for i := range passages {
		if err := s.lexical.Index(ctx, passages[i]); err != nil {
			return fmt.Errorf("index passage %s: %w", passages[i].ChunkID, err)
		}
	}
	return nil
}

// indexDense embeds passages in batches and writes the vectors. The
// batch size here is a transport courtesy; the embedding adapter
// enforces its own provider limits on top.
func (s *IngestService) indexDense(ctx context.Context, passages []domain.Passage) error {
	if s.vectors == nil || s.embedder == nil {
		logger.Warn("No embedding backend, skipping dense index")
		return nil
	}

	for start := 0; start < len(passages); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(passages) {
			end = len(passages)
		}
		batch := passages[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}

		embeddings, err := s.embedder.EmbedDocuments(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("embed batch at %d: got %d embeddings for %d texts", start, len(embeddings), len(batch))
		}

		for i := range batch {
			if err := s.vectors.Add(ctx, batch[i].ChunkID, embeddings[i]); err != nil {
				return fmt.Errorf("add vector %s: %w", batch[i].ChunkID, err)
			}
		}
		logger.Debug("Embedded %d/%d passages", end, len(passages))
	}

	if err := s.vectors.Flush(ctx); err != nil {
		return fmt.Errorf("flush vector index: %w", err)
	}
	return nil
}

func bookNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
