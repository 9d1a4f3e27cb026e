package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Span is a run of text with a single font size, as extracted from a PDF.
type Span struct {
	// Text is the span content.
	Text string

	// FontSize is the rendered font size in points.
	FontSize float64
}

// Line is one visual line of page text, composed of one or more spans.
type Line struct {
	// Spans are the font-sized runs making up the line.
	Spans []Span
}

// Text joins the non-empty span texts with single spaces.
func (l Line) Text() string {
	parts := make([]string, 0, len(l.Spans))
	for _, s := range l.Spans {
		if strings.TrimSpace(s.Text) != "" {
			parts = append(parts, strings.TrimSpace(s.Text))
		}
	}
	return strings.Join(parts, " ")
}

// MaxFontSize returns the largest span font size on the line, or 0 when
// the line carries no font information.
func (l Line) MaxFontSize() float64 {
	var maxSize float64
	for _, s := range l.Spans {
		if s.FontSize > maxSize {
			maxSize = s.FontSize
		}
	}
	return maxSize
}

// Page is the extracted text of a single PDF page.
type Page struct {
	// Number is the 1-indexed page number.
	Number int

	// Lines are the page's text lines in reading order.
	Lines []Line
}

// Paragraph is a section-tagged block of body text produced by the
// segmenter. Paragraphs are intermediate: they exist between extraction
// and chunking and are never persisted.
type Paragraph struct {
	// SectionTitle is the most recent heading seen before this paragraph.
	SectionTitle string

	// Text is the accumulated body text.
	Text string

	// PageNumber is the 1-indexed page the paragraph was flushed on.
	PageNumber int
}

// Passage is the atomic unit of retrieval: a bounded chunk of source
// text with full provenance metadata. Passages are created once at
// ingestion time and never mutated afterwards.
type Passage struct {
	// Text is the chunk content.
	Text string

	// BookName identifies the source document (file stem).
	BookName string

	// BookType is a free-form label, e.g. "reference" or "practice".
	BookType string

	// SectionTitle is the heading the source paragraph fell under.
	SectionTitle string

	// Topic is the classified topic label, or "General".
	Topic string

	// PageNumber is the 1-indexed source page.
	PageNumber int

	// ChunkID uniquely identifies the passage within its book,
	// formatted as "{book_name}_{sequence}".
	ChunkID string
}

// NewChunkID formats a passage identifier from a book name and sequence.
func NewChunkID(bookName string, seq int) string {
	return fmt.Sprintf("%s_%d", bookName, seq)
}

// Sequence parses the numeric suffix of the passage's ChunkID.
// Returns -1 when the ID is malformed.
func (p Passage) Sequence() int {
	idx := strings.LastIndex(p.ChunkID, "_")
	if idx < 0 {
		return -1
	}
	seq, err := strconv.Atoi(p.ChunkID[idx+1:])
	if err != nil {
		return -1
	}
	return seq
}

// Citation renders the passage's provenance in display form.
func (p Passage) Citation() string {
	return fmt.Sprintf("%s - %s | Topic: %s | Page: %d",
		p.BookName, p.SectionTitle, p.Topic, p.PageNumber)
}

// ScoreSource identifies which retrieval signal produced a score.
type ScoreSource string

const (
	// ScoreSourceDense marks a vector-similarity score.
	ScoreSourceDense ScoreSource = "dense"

	// ScoreSourceLexical marks a term-frequency score.
	ScoreSourceLexical ScoreSource = "lexical"

	// ScoreSourceFused marks a weighted combination of dense and lexical.
	ScoreSourceFused ScoreSource = "fused"

	// ScoreSourceRerank marks a cross-encoder relevance score.
	ScoreSourceRerank ScoreSource = "rerank"
)

// RankedPassage pairs a passage with its relevance score for one query.
// Ranked passages are ephemeral: they are built per query and handed to
// the caller, never persisted.
type RankedPassage struct {
	// Passage is the retrieved passage.
	Passage Passage

	// Score is the relevance score. Higher is better.
	Score float64

	// Source identifies the stage that produced the score.
	Source ScoreSource
}
