package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

func testPassage(bookName string, seq int) domain.Passage {
	return domain.Passage{
		Text:     "Behavioural experiments test the catastrophic prediction directly.",
		BookName: bookName,
		BookType: "reference",
		ChunkID:  domain.NewChunkID(bookName, seq),
	}
}

func TestPassageStore_SaveAndGet(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	p := testPassage("cbt-manual", 0)
	require.NoError(t, store.SavePassages(ctx, []domain.Passage{p}))

	got, err := store.GetPassage(ctx, "cbt-manual_0")
	require.NoError(t, err)
	assert.Equal(t, p, *got)
}

func TestPassageStore_GetPassage_NotFound(t *testing.T) {
	store := NewPassageStore()

	_, err := store.GetPassage(context.Background(), "absent_0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPassageStore_SavePassages_RejectsMissingChunkID(t *testing.T) {
	store := NewPassageStore()

	err := store.SavePassages(context.Background(), []domain.Passage{{Text: "no id"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPassageStore_SavePassages_OverwritesByChunkID(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	p := testPassage("vol", 0)
	require.NoError(t, store.SavePassages(ctx, []domain.Passage{p}))

	p.Text = "revised"
	require.NoError(t, store.SavePassages(ctx, []domain.Passage{p}))

	got, err := store.GetPassage(ctx, "vol_0")
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Text)

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPassageStore_ListPassages_SortsBySequence(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		testPassage("vol", 10),
		testPassage("vol", 0),
		testPassage("vol", 2),
		testPassage("other", 0),
	}))

	got, err := store.ListPassages(ctx, "vol")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "vol_0", got[0].ChunkID)
	assert.Equal(t, "vol_2", got[1].ChunkID)
	assert.Equal(t, "vol_10", got[2].ChunkID)
}

func TestPassageStore_ListAll_SortsByBookThenSequence(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		testPassage("beta", 0),
		testPassage("alpha", 1),
		testPassage("alpha", 0),
	}))

	got, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "alpha_0", got[0].ChunkID)
	assert.Equal(t, "alpha_1", got[1].ChunkID)
	assert.Equal(t, "beta_0", got[2].ChunkID)
}

func TestPassageStore_DeleteBook(t *testing.T) {
	store := NewPassageStore()
	ctx := context.Background()

	require.NoError(t, store.SavePassages(ctx, []domain.Passage{
		testPassage("alpha", 0),
		testPassage("alpha", 1),
		testPassage("beta", 0),
	}))

	require.NoError(t, store.DeleteBook(ctx, "alpha"))

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "beta_0", all[0].ChunkID)

	assert.NoError(t, store.DeleteBook(ctx, "alpha"))
}
