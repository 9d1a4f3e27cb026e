package bm25

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// --- Test helpers ---

func indexPassages(t *testing.T, ix *Index, passages ...domain.Passage) {
	t.Helper()
	for _, p := range passages {
		require.NoError(t, ix.Index(context.Background(), p))
	}
}

func passage(chunkID, text string) domain.Passage {
	return domain.Passage{ChunkID: chunkID, Text: text}
}

// --- Tests ---

func TestIndex_Search_RanksByTermRelevance(t *testing.T) {
	ix := New()
	indexPassages(t, ix,
		passage("m_0", "exposure exposure exposure therapy for phobias"),
		passage("m_1", "exposure therapy session structure"),
		passage("m_2", "cognitive restructuring of automatic thoughts"),
	)

	hits, err := ix.Search(context.Background(), "exposure", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "m_0", hits[0].ChunkID)
	assert.Equal(t, "m_1", hits[1].ChunkID)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestIndex_Search_RareTermsWeighMore(t *testing.T) {
	ix := New()
	indexPassages(t, ix,
		passage("m_0", "therapy therapy agoraphobia"),
		passage("m_1", "therapy notes"),
		passage("m_2", "therapy outcomes"),
	)

	// "agoraphobia" appears in one document, "therapy" in all three.
	hits, err := ix.Search(context.Background(), "agoraphobia therapy", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "m_0", hits[0].ChunkID)
}

func TestIndex_Search_OmitsNonMatches(t *testing.T) {
	ix := New()
	indexPassages(t, ix,
		passage("m_0", "panic disorder treatment"),
		passage("m_1", "sleep hygiene basics"),
	)

	hits, err := ix.Search(context.Background(), "panic", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "m_0", hits[0].ChunkID)
}

func TestIndex_Search_TruncatesToK(t *testing.T) {
	ix := New()
	indexPassages(t, ix,
		passage("m_0", "anxiety one"),
		passage("m_1", "anxiety two"),
		passage("m_2", "anxiety three"),
	)

	hits, err := ix.Search(context.Background(), "anxiety", 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestIndex_Search_EmptyCases(t *testing.T) {
	ix := New()

	hits, err := ix.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Nil(t, hits)

	indexPassages(t, ix, passage("m_0", "some text"))

	hits, err = ix.Search(context.Background(), "", 5)
	require.NoError(t, err)
	assert.Nil(t, hits)

	hits, err = ix.Search(context.Background(), "some", 0)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestIndex_Search_TokenisationIsCaseAndPunctuationInsensitive(t *testing.T) {
	ix := New()
	indexPassages(t, ix, passage("m_0", "Exposure-based treatment; see DSM-5."))

	hits, err := ix.Search(context.Background(), "EXPOSURE dsm", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "m_0", hits[0].ChunkID)
}

func TestIndex_Index_ReplacesExistingChunkID(t *testing.T) {
	ix := New()
	indexPassages(t, ix,
		passage("m_0", "agoraphobia and avoidance"),
		passage("m_1", "unrelated filler text"),
	)

	// Re-index m_0 with content that no longer mentions the term.
	indexPassages(t, ix, passage("m_0", "relaxation training script"))

	assert.Equal(t, 2, ix.Count())

	hits, err := ix.Search(context.Background(), "agoraphobia", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = ix.Search(context.Background(), "relaxation", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "m_0", hits[0].ChunkID)
}

func TestIndex_Count(t *testing.T) {
	ix := New()
	assert.Equal(t, 0, ix.Count())

	indexPassages(t, ix, passage("m_0", "a"), passage("m_1", "b"), passage("m_0", "c"))
	assert.Equal(t, 2, ix.Count())
}
