package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driving"
	"github.com/psyra-labs/psyra-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// scoredChunk holds intermediate results before hydration.
type scoredChunk struct {
	chunkID string
	score   float64
	source  domain.ScoreSource
}

// RetrievalService provides hybrid passage retrieval: dense and lexical
// candidates fused by weighted score combination, optionally re-scored
// by a cross-encoder, filtered, truncated and gated for relevance.
//
// All collaborators are read-only on the query path; concurrent queries
// share no mutable state.
type RetrievalService struct {
	store    driven.PassageStore
	vectors  driven.VectorIndex
	lexical  driven.LexicalIndex
	embedder driven.EmbeddingService
	reranker driven.Reranker
	judge    driven.RelevanceJudge
	opts     domain.RetrievalOptions
}

// NewRetrievalService creates a retrieval service. The vectors and
// embedder parameters are optional (can be nil); without them retrieval
// degrades to lexical-only. The reranker must not be nil: pass the noop
// implementation when no rerank backend is configured.
func NewRetrievalService(
	store driven.PassageStore,
	vectors driven.VectorIndex,
	lexical driven.LexicalIndex,
	embedder driven.EmbeddingService,
	reranker driven.Reranker,
	judge driven.RelevanceJudge,
	opts domain.RetrievalOptions,
) *RetrievalService {
	return &RetrievalService{
		store:    store,
		vectors:  vectors,
		lexical:  lexical,
		embedder: embedder,
		reranker: reranker,
		judge:    judge,
		opts:     opts,
	}
}

// Retrieve runs the full query-time pipeline and returns the final
// ranked passage list. A relevance-gate miss returns
// domain.ErrNoRelevantContext, which is a normal outcome.
func (s *RetrievalService) Retrieve(ctx context.Context, query string) ([]domain.RankedPassage, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, nothing to ground")
		return nil, domain.ErrNoRelevantContext
	}

	logger.Debug("Signals available: dense=%t, lexical=%t, rerank=%q",
		s.vectors != nil && s.embedder != nil,
		s.lexical != nil,
		s.reranker.ModelName())

	chunks, err := s.hybridSearch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	logger.Debug("Fused candidates: %d", len(chunks))

	results, err := s.hydrate(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}

	results = s.rerank(ctx, query, results)
	results = s.filterAndTruncate(results)
	logger.Info("Final results: %d", len(results))

	passages := make([]domain.Passage, len(results))
	for i := range results {
		passages[i] = results[i].Passage
	}
	if !s.judge.IsRelevant(query, passages) {
		logger.Info("Relevance gate: miss, falling back to ungrounded response")
		return nil, domain.ErrNoRelevantContext
	}

	return results, nil
}

// denseSearch embeds the query and searches the vector index.
// L2 distances are mapped to similarity scores via 1/(1+d).
func (s *RetrievalService) denseSearch(ctx context.Context, query string) ([]scoredChunk, error) {
	if s.vectors == nil || s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	embedding, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(embedding))

	hits, err := s.vectors.Search(ctx, embedding, s.opts.DenseK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Dense search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{
			chunkID: hit.ChunkID,
			score:   1.0 / (1.0 + hit.Distance),
			source:  domain.ScoreSourceDense,
		}
	}
	return results, nil
}

// lexicalSearch runs the BM25 index.
func (s *RetrievalService) lexicalSearch(ctx context.Context, query string) ([]scoredChunk, error) {
	if s.lexical == nil {
		return nil, errors.New("lexical index unavailable")
	}

	hits, err := s.lexical.Search(ctx, query, s.opts.LexicalK)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	logger.Debug("Lexical search: %d hits", len(hits))

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{
			chunkID: hit.ChunkID,
			score:   hit.Score,
			source:  domain.ScoreSourceLexical,
		}
	}
	return results, nil
}

// hybridSearch runs dense and lexical retrieval in parallel and fuses
// the lists. If one signal fails the other carries the query alone.
func (s *RetrievalService) hybridSearch(ctx context.Context, query string) ([]scoredChunk, error) {
	var denseResults, lexicalResults []scoredChunk
	var denseErr, lexicalErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		denseResults, denseErr = s.denseSearch(ctx, query)
	}()
	go func() {
		defer wg.Done()
		lexicalResults, lexicalErr = s.lexicalSearch(ctx, query)
	}()
	wg.Wait()

	if denseErr != nil && lexicalErr != nil {
		return nil, fmt.Errorf("dense=%w, lexical=%w", denseErr, lexicalErr)
	}
	if denseErr != nil {
		logger.Warn("Dense retrieval failed, using lexical only: %v", denseErr)
		return normalise(lexicalResults), nil
	}
	if lexicalErr != nil {
		logger.Warn("Lexical retrieval failed, using dense only: %v", lexicalErr)
		return normalise(denseResults), nil
	}

	return s.fuse(denseResults, lexicalResults), nil
}

// fuse merges two candidate lists by weighted linear combination of
// normalised scores.
func (s *RetrievalService) fuse(dense, lexical []scoredChunk) []scoredChunk {
	dense = normalise(dense)
	lexical = normalise(lexical)

	scores := make(map[string]float64)
	for _, c := range dense {
		scores[c.chunkID] += s.opts.DenseWeight * c.score
	}
	for _, c := range lexical {
		scores[c.chunkID] += s.opts.LexicalWeight * c.score
	}

	fused := make([]scoredChunk, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, scoredChunk{chunkID: id, score: score, source: domain.ScoreSourceFused})
	}
	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		return fused[i].chunkID < fused[j].chunkID
	})
	return fused
}

// normalise maps scores outside [0,1] onto [0,1] via min-max scaling.
// Lists already in range pass through unchanged, so similarity-style
// scores keep their absolute values.
func normalise(chunks []scoredChunk) []scoredChunk {
	if len(chunks) == 0 {
		return chunks
	}

	minScore, maxScore := chunks[0].score, chunks[0].score
	for _, c := range chunks[1:] {
		if c.score < minScore {
			minScore = c.score
		}
		if c.score > maxScore {
			maxScore = c.score
		}
	}
	if minScore >= 0 && maxScore <= 1 {
		return chunks
	}

	out := make([]scoredChunk, len(chunks))
	spread := maxScore - minScore
	for i, c := range chunks {
		score := 1.0
		if spread > 0 {
			score = (c.score - minScore) / spread
		}
		out[i] = scoredChunk{chunkID: c.chunkID, score: score, source: c.source}
	}
	return out
}

// hydrate resolves chunk IDs to passages from the store. Passages that
// have been deleted since indexing are skipped.
func (s *RetrievalService) hydrate(ctx context.Context, chunks []scoredChunk) ([]domain.RankedPassage, error) {
	results := make([]domain.RankedPassage, 0, len(chunks))
	for _, sc := range chunks {
		passage, err := s.store.GetPassage(ctx, sc.chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get passage %s: %w", sc.chunkID, err)
		}
		results = append(results, domain.RankedPassage{
			Passage: *passage,
			Score:   sc.score,
			Source:  sc.source,
		})
	}
	return results, nil
}

// rerank re-scores the candidates with the configured cross-encoder.
// A rerank failure on the query path is recoverable: the fused ordering
// stands and a warning is logged.
func (s *RetrievalService) rerank(ctx context.Context, query string, results []domain.RankedPassage) []domain.RankedPassage {
	if len(results) == 0 {
		return results
	}
	reranked, err := s.reranker.Rerank(ctx, query, results, s.opts.RerankTopN)
	if err != nil {
		logger.Warn("Rerank failed, keeping fused scores: %v", err)
		return results
	}
	return reranked
}

// filterAndTruncate drops sub-threshold results, sorts by descending
// score and cuts to TopK.
func (s *RetrievalService) filterAndTruncate(results []domain.RankedPassage) []domain.RankedPassage {
	filtered := make([]domain.RankedPassage, 0, len(results))
	for _, r := range results {
		if r.Score >= s.opts.ScoreThreshold {
			filtered = append(filtered, r)
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Score > filtered[j].Score
	})
	if len(filtered) > s.opts.TopK {
		filtered = filtered[:s.opts.TopK]
	}
	return filtered
}

// FormatContext renders passages into a context body and a citations
// block for the agent prompt.
func (s *RetrievalService) FormatContext(passages []domain.RankedPassage) (string, string) {
	if len(passages) == 0 {
		return "", ""
	}

	bodies := make([]string, len(passages))
	var citations strings.Builder
	citations.WriteString("--- Retrieved Sources ---\n")
	for i, p := range passages {
		bodies[i] = p.Passage.Text
		fmt.Fprintf(&citations, "[%d] %s\n", i+1, p.Passage.Citation())
	}

	return strings.Join(bodies, "\n\n"), strings.TrimRight(citations.String(), "\n")
}
