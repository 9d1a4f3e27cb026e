package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// --- Mock implementations ---

// stubClassifier implements driven.TopicClassifier for testing.
type stubClassifier struct {
	label string
}

func (s *stubClassifier) Classify(_ string) string {
	return s.label
}

// --- Test helpers ---

func paragraph(section, text string, page int) domain.Paragraph {
	return domain.Paragraph{SectionTitle: section, Text: text, PageNumber: page}
}

// sentences builds text of n numbered sentences, each roughly the
// same length, terminated with ". ".
func sentences(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "Sentence number %03d describes one step of the exposure protocol. ", i)
	}
	return b.String()
}

// --- Tests ---

func TestChunker_ChunkBook_Provenance(t *testing.T) {
	c := New(&stubClassifier{label: "Anxiety"})

	text := "Graded exposure begins with the least feared situation and proceeds up the hierarchy."
	passages := c.ChunkBook(
		[]domain.Paragraph{paragraph("Exposure Therapy", text, 34)},
		"cbt-manual", "reference",
	)

	require.Len(t, passages, 1)
	p := passages[0]
	assert.Equal(t, text, p.Text)
	assert.Equal(t, "cbt-manual", p.BookName)
	assert.Equal(t, "reference", p.BookType)
	assert.Equal(t, "Exposure Therapy", p.SectionTitle)
	assert.Equal(t, "Anxiety", p.Topic)
	assert.Equal(t, 34, p.PageNumber)
	assert.Equal(t, "cbt-manual_0", p.ChunkID)
}

func TestChunker_ChunkBook_SequenceIsGapFree(t *testing.T) {
	c := New(&stubClassifier{label: "General"}, WithChunkSize(200), WithOverlap(20))

	paragraphs := []domain.Paragraph{
		paragraph("One", sentences(8), 1),
		paragraph("Two", sentences(8), 2),
	}
	passages := c.ChunkBook(paragraphs, "vol", "reference")
	require.Greater(t, len(passages), 2)

	for i, p := range passages {
		assert.Equal(t, domain.NewChunkID("vol", i), p.ChunkID)
		assert.Equal(t, i, p.Sequence())
	}
}

func TestChunker_ChunkBook_DropsShortParagraphs(t *testing.T) {
	c := New(&stubClassifier{label: "General"})

	passages := c.ChunkBook([]domain.Paragraph{
		paragraph("Header", "Chapter 3", 1),
		paragraph("Body", "A paragraph long enough to survive the minimum length filter applied here.", 1),
	}, "vol", "reference")

	require.Len(t, passages, 1)
	assert.Equal(t, "Body", passages[0].SectionTitle)
	assert.Equal(t, "vol_0", passages[0].ChunkID)
}

func TestChunker_ChunkBook_MergesUndersizedTrailingChunk(t *testing.T) {
	c := New(&stubClassifier{label: "General"}, WithChunkSize(120), WithOverlap(0))

	long := strings.Repeat("The hierarchy is negotiated collaboratively over weeks", 2) + ". "
	short := "Then homework is assigned."
	passages := c.ChunkBook(
		[]domain.Paragraph{paragraph("Sec", long+short, 5)},
		"vol", "reference",
	)

	// The trailing fragment is below the standalone minimum and folds
	// into the preceding passage instead of becoming its own.
	require.Len(t, passages, 1)
	assert.Contains(t, passages[0].Text, "Then homework is assigned.")
	assert.Equal(t, "vol_0", passages[0].ChunkID)
}

func TestChunker_Split_RespectsChunkSize(t *testing.T) {
	c := New(&stubClassifier{label: "General"}, WithChunkSize(100), WithOverlap(20))

	chunks := c.Split(sentences(20))
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 100)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}

func TestChunker_Split_CoversAllSentences(t *testing.T) {
	c := New(&stubClassifier{label: "General"}, WithChunkSize(150), WithOverlap(30))

	chunks := c.Split(sentences(10))
	joined := strings.Join(chunks, " ")
	for i := 0; i < 10; i++ {
		assert.Contains(t, joined, fmt.Sprintf("Sentence number %03d", i))
	}
}

func TestChunker_Split_ShortTextPassesThrough(t *testing.T) {
	c := New(&stubClassifier{label: "General"})

	assert.Equal(t, []string{"short text"}, c.Split("short text"))
	assert.Nil(t, c.Split("   "))
}

func TestChunker_Split_HardSplitWithoutSeparators(t *testing.T) {
	c := New(&stubClassifier{label: "General"}, WithChunkSize(40), WithOverlap(10))

	// One unbroken token forces the fixed-window fallback.
	text := strings.Repeat("x", 100)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), 40)
	}
	assert.Equal(t, strings.Repeat("x", 40), chunks[0])
}

func TestChunker_Split_Deterministic(t *testing.T) {
	c := New(&stubClassifier{label: "General"}, WithChunkSize(200), WithOverlap(50))

	text := sentences(15)
	assert.Equal(t, c.Split(text), c.Split(text))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "a b c", Clean("  a\n\nb\t c  "))
	assert.Equal(t, "", Clean(" \n\t "))
	assert.Equal(t, "unchanged", Clean("unchanged"))
}

func TestNew_ClampsOverlap(t *testing.T) {
	c := New(&stubClassifier{label: "General"}, WithChunkSize(100), WithOverlap(100))
	assert.Equal(t, 25, c.overlap)
}
