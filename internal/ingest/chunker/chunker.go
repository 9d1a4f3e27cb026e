// Package chunker splits paragraphs into bounded, overlapping passages
// with full provenance metadata.
package chunker

import (
	"regexp"
	"strings"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
)

// Default chunking parameters.
const (
	// DefaultChunkSize is the target passage length in characters.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the overlap carried between neighbouring
	// passages of one paragraph.
	DefaultChunkOverlap = 100

	// MinChunkLength is the shortest chunk emitted standalone. Smaller
	// chunks are merged into the previous passage when possible.
	MinChunkLength = 100

	// MaxMergedLength bounds the combined length after merging an
	// undersized chunk into its predecessor.
	MaxMergedLength = 1500

	// MinParagraphLength mirrors the segmenter's bar: shorter
	// paragraphs produce no passages at all.
	MinParagraphLength = 50
)

// defaultSeparators is the priority-ordered cascade: paragraph breaks
// first, then sentence terminators, then whitespace, then a hard split.
var defaultSeparators = []string{"\n\n", ". ", "! ", "? ", "\n", " ", ""}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Chunker splits cleaned paragraph text along a separator cascade,
// keeping separators in the output, and tags every emitted passage with
// book, section, topic and page provenance.
type Chunker struct {
	chunkSize  int
	overlap    int
	separators []string
	classifier driven.TopicClassifier
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker that classifies topics with the given classifier.
func New(classifier driven.TopicClassifier, opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: defaultSeparators,
		classifier: classifier,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}
	return c
}

// ChunkBook converts paragraphs into passages for one book. Chunk IDs
// carry a single monotonically increasing sequence across the whole
// book, with no gaps or duplicates.
func (c *Chunker) ChunkBook(paragraphs []domain.Paragraph, bookName, bookType string) []domain.Passage {
	var passages []domain.Passage
	seq := 0

	for _, para := range paragraphs {
		text := Clean(para.Text)
		if len(text) < MinParagraphLength {
			continue
		}

		for _, chunk := range c.Split(text) {
			// Undersized chunks fold into the previous passage rather
			// than standing alone, unless that would overgrow it.
			if len(chunk) < MinChunkLength && seq > 0 && len(passages) > 0 {
				prev := &passages[len(passages)-1]
				if len(prev.Text)+len(chunk) < MaxMergedLength {
					prev.Text += " " + chunk
					continue
				}
			}

			passages = append(passages, domain.Passage{
				Text:         chunk,
				BookName:     bookName,
				BookType:     bookType,
				SectionTitle: para.SectionTitle,
				Topic:        c.classifier.Classify(chunk),
				PageNumber:   para.PageNumber,
				ChunkID:      domain.NewChunkID(bookName, seq),
			})
			seq++
		}
	}

	return passages
}

// Clean collapses internal whitespace runs to single spaces and trims.
func Clean(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// Split divides text into chunks of at most the configured size using
// the separator cascade, preserving separators in the output.
func (c *Chunker) Split(text string) []string {
	return c.split(text, c.separators)
}

func (c *Chunker) split(text string, separators []string) []string {
	if len(text) <= c.chunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{strings.TrimSpace(text)}
	}

	// Pick the highest-priority separator that occurs in the text.
	sep := ""
	var rest []string
	for i, s := range separators {
		if s == "" {
			break
		}
		if strings.Contains(text, s) {
			sep = s
			rest = separators[i+1:]
			break
		}
	}
	if sep == "" {
		return c.hardSplit(text)
	}

	splits := splitKeep(text, sep)

	// Oversized pieces recurse to the next separator; the runs in
	// between are greedily merged up to chunkSize with overlap.
	var chunks []string
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			chunks = append(chunks, c.merge(pending)...)
			pending = nil
		}
	}
	for _, piece := range splits {
		if len(piece) <= c.chunkSize {
			pending = append(pending, piece)
			continue
		}
		flush()
		chunks = append(chunks, c.split(piece, rest)...)
	}
	flush()

	return chunks
}

// merge packs separator-delimited pieces into chunks of at most
// chunkSize, carrying roughly overlap characters into the next chunk.
func (c *Chunker) merge(pieces []string) []string {
	var chunks []string
	var current []string
	total := 0

	for _, piece := range pieces {
		if total+len(piece) > c.chunkSize && len(current) > 0 {
			if joined := strings.TrimSpace(strings.Join(current, "")); joined != "" {
				chunks = append(chunks, joined)
			}
			// Drop leading pieces until the remainder fits the overlap
			// budget and leaves room for the incoming piece.
			for total > c.overlap || (total+len(piece) > c.chunkSize && total > 0) {
				total -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += len(piece)
	}

	if joined := strings.TrimSpace(strings.Join(current, "")); joined != "" {
		chunks = append(chunks, joined)
	}
	return chunks
}

// hardSplit is the empty-separator fallback: fixed windows with overlap.
func (c *Chunker) hardSplit(text string) []string {
	var chunks []string
	step := c.chunkSize - c.overlap
	for start := 0; start < len(text); start += step {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(text) {
			break
		}
	}
	return chunks
}

// splitKeep splits text after each occurrence of sep, keeping the
// separator attached to the preceding piece.
func splitKeep(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
