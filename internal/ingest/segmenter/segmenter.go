package segmenter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// Segmentation parameters.
const (
	// DefaultSection tags paragraphs seen before the first heading.
	DefaultSection = "Introduction"

	// MinParagraphLength is the shortest paragraph worth emitting.
	MinParagraphLength = 50

	// MaxHeadingLength caps how long a large-font line can be and still
	// count as a heading. Longer lines are body text with big type.
	MaxHeadingLength = 100
)

// numberedHeadingRe matches headings like "3 Anxiety" or "12.4.1 Intake".
var numberedHeadingRe = regexp.MustCompile(`^\d+(\.\d+)*\s+.+`)

// Segmenter walks page lines and accumulates body text into paragraphs,
// closing them at headings and page boundaries. Heading detection is
// purely line-local; a body line with oversized font truncates the
// paragraph early, which is an accepted ingestion-quality tradeoff.
type Segmenter struct {
	threshold float64
}

// New creates a segmenter using the given heading font threshold.
func New(threshold float64) *Segmenter {
	return &Segmenter{threshold: threshold}
}

// IsHeading classifies a single line.
func (s *Segmenter) IsHeading(line domain.Line) bool {
	text := strings.TrimSpace(line.Text())
	if numberedHeadingRe.MatchString(text) {
		return true
	}
	return line.MaxFontSize() >= s.threshold && len(text) < MaxHeadingLength
}

// Segment converts pages into section-tagged paragraphs. Text shorter
// than MinParagraphLength carries past a heading into the next
// section's paragraph and is dropped only at the end of its page. Page
// numbers on emitted paragraphs are 1-indexed.
func (s *Segmenter) Segment(pages []domain.Page) []domain.Paragraph {
	var paragraphs []domain.Paragraph
	section := DefaultSection

	for _, page := range pages {
		var buf strings.Builder

		emit := func() {
			text := buf.String()
			if len(text) >= MinParagraphLength {
				paragraphs = append(paragraphs, domain.Paragraph{
					SectionTitle: section,
					Text:         text,
					PageNumber:   page.Number,
				})
				buf.Reset()
			}
		}

		for _, line := range page.Lines {
			text := strings.TrimSpace(line.Text())
			if text == "" || line.MaxFontSize() == 0 {
				continue
			}

			if s.IsHeading(line) {
				// A fragment too short to emit survives the heading
				// and opens the next section's first paragraph.
				emit()
				section = titleCase(text)
				continue
			}

			if buf.Len() > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(text)
		}

		// A paragraph never spans a page boundary; whatever is left
		// in the buffer is discarded with the page.
		emit()
	}

	return paragraphs
}

// titleCase capitalises the first letter of each word and lowers the
// rest, matching how section titles are stored in the passage table.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		for j, r := range runes {
			if unicode.IsLetter(r) {
				runes[j] = unicode.ToUpper(r)
				break
			}
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
