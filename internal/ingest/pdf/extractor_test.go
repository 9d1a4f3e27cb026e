package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

func TestRowToLine_CoalescesSameFontFragments(t *testing.T) {
	row := &pdf.Row{
		Content: pdf.TextHorizontal{
			{S: "Exposure ", FontSize: 16},
			{S: "Therapy", FontSize: 16},
			{S: " (chapter 4)", FontSize: 10},
		},
	}

	line := rowToLine(row)
	require.Len(t, line.Spans, 2)
	assert.Equal(t, "Exposure Therapy", line.Spans[0].Text)
	assert.Equal(t, 16.0, line.Spans[0].FontSize)
	assert.Equal(t, " (chapter 4)", line.Spans[1].Text)
	assert.Equal(t, 10.0, line.Spans[1].FontSize)
}

func TestRowToLine_SkipsEmptyFragments(t *testing.T) {
	row := &pdf.Row{
		Content: pdf.TextHorizontal{
			{S: "", FontSize: 12},
			{S: "text", FontSize: 12},
			{S: "", FontSize: 12},
		},
	}

	line := rowToLine(row)
	require.Len(t, line.Spans, 1)
	assert.Equal(t, "text", line.Spans[0].Text)
}

func TestRowToLine_EmptyRow(t *testing.T) {
	line := rowToLine(&pdf.Row{})
	assert.Empty(t, line.Spans)
}

func TestExtractor_Extract_MissingFile(t *testing.T) {
	e := NewExtractor()

	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "absent.pdf"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExtractor_Extract_NotAPDF(t *testing.T) {
	e := NewExtractor()

	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("plain text, no PDF header"), 0o644))

	_, err := e.Extract(context.Background(), path)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
