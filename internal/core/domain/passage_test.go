package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChunkID(t *testing.T) {
	assert.Equal(t, "cbt-manual_0", NewChunkID("cbt-manual", 0))
	assert.Equal(t, "cbt-manual_42", NewChunkID("cbt-manual", 42))
}

func TestPassage_Sequence(t *testing.T) {
	tests := []struct {
		name    string
		chunkID string
		want    int
	}{
		{"simple", "book_7", 7},
		{"book name with underscore", "my_book_12", 12},
		{"zero", "book_0", 0},
		{"no underscore", "book", -1},
		{"non-numeric suffix", "book_abc", -1},
		{"empty", "", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Passage{ChunkID: tt.chunkID}
			assert.Equal(t, tt.want, p.Sequence())
		})
	}
}

func TestPassage_Citation(t *testing.T) {
	p := Passage{
		BookName:     "cbt-manual",
		SectionTitle: "Exposure Therapy",
		Topic:        "Anxiety",
		PageNumber:   34,
	}

	assert.Equal(t, "cbt-manual - Exposure Therapy | Topic: Anxiety | Page: 34", p.Citation())
}

func TestLine_Text(t *testing.T) {
	line := Line{Spans: []Span{
		{Text: "  Exposure ", FontSize: 16},
		{Text: "   ", FontSize: 16},
		{Text: "Therapy", FontSize: 10},
	}}

	assert.Equal(t, "Exposure Therapy", line.Text())
	assert.Equal(t, "", Line{}.Text())
}

func TestLine_MaxFontSize(t *testing.T) {
	line := Line{Spans: []Span{
		{Text: "a", FontSize: 10},
		{Text: "b", FontSize: 16},
		{Text: "c", FontSize: 12},
	}}

	assert.Equal(t, 16.0, line.MaxFontSize())
	assert.Equal(t, 0.0, Line{}.MaxFontSize())
}
