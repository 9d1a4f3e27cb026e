// Package pdf extracts layout-aware page text from PDF files.
//
// Extraction keeps per-span font sizes so the segmenter can tell
// headings from body text. Files are structurally validated before any
// text is read; per-page extraction errors are tolerated and reported
// as empty pages, since scanned or damaged pages are common in the
// source corpus.
package pdf

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
	"github.com/psyra-labs/psyra-cli/internal/logger"
)

var _ driven.PageExtractor = (*Extractor)(nil)

// Extractor reads PDF pages with font-size metadata.
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract validates and reads the PDF at path, returning one Page per
// document page in order. Pages are numbered from 1.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	if err := api.ValidateFile(path, nil); err != nil {
		return nil, fmt.Errorf("%w: not a readable PDF %s: %v", domain.ErrInvalidInput, path, err)
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", domain.ErrInvalidInput, path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]domain.Page, 0, total)
	for num := 1; num <= total; num++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := domain.Page{Number: num}
		p := reader.Page(num)
		if p.V.IsNull() {
			pages = append(pages, page)
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			// A damaged page should not sink the whole book.
			logger.Warn("Page %d of %s: %v", num, path, err)
			pages = append(pages, page)
			continue
		}

		for _, row := range rows {
			line := rowToLine(row)
			if len(line.Spans) > 0 {
				page.Lines = append(page.Lines, line)
			}
		}
		pages = append(pages, page)
	}

	return pages, nil
}

// rowToLine converts one text row into a Line, coalescing adjacent
// fragments that share a font size into a single span.
func rowToLine(row *pdf.Row) domain.Line {
	var line domain.Line
	for _, word := range row.Content {
		if word.S == "" {
			continue
		}
		n := len(line.Spans)
		if n > 0 && line.Spans[n-1].FontSize == word.FontSize {
			line.Spans[n-1].Text += word.S
			continue
		}
		line.Spans = append(line.Spans, domain.Span{
			Text:     word.S,
			FontSize: word.FontSize,
		})
	}
	return line
}
