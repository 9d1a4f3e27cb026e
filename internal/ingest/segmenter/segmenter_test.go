package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
)

// --- Test helpers ---

func lineWithFont(text string, size float64) domain.Line {
	return domain.Line{Spans: []domain.Span{{Text: text, FontSize: size}}}
}

// --- Tests ---

func TestSegmenter_IsHeading(t *testing.T) {
	s := New(14.0)

	tests := []struct {
		name string
		line domain.Line
		want bool
	}{
		{
			name: "large font short line",
			line: lineWithFont("Exposure Techniques", 16),
			want: true,
		},
		{
			name: "large font at threshold",
			line: lineWithFont("Exposure Techniques", 14),
			want: true,
		},
		{
			name: "large font but too long",
			line: lineWithFont(strings.Repeat("pull quote set in display type ", 4), 16),
			want: false,
		},
		{
			name: "numbered heading with body font",
			line: lineWithFont("3.1 Graded Exposure", 10),
			want: true,
		},
		{
			name: "deeply numbered heading",
			line: lineWithFont("12.4.1 Intake Interview", 10),
			want: true,
		},
		{
			name: "plain body line",
			line: lineWithFont("The client reported improvement.", 10),
			want: false,
		},
		{
			name: "bare number is not a heading",
			line: lineWithFont("42", 10),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.IsHeading(tt.line))
		})
	}
}

func TestSegmenter_Segment(t *testing.T) {
	s := New(14.0)

	body1 := "Preliminary material describing the scope of the manual and its audience."
	body2 := "Systematic desensitisation pairs relaxation with a graded fear hierarchy of situations."

	pages := []domain.Page{
		{
			Number: 1,
			Lines: []domain.Line{
				lineWithFont(body1, 10),
				lineWithFont("EXPOSURE THERAPY", 16),
				lineWithFont(body2, 10),
			},
		},
	}

	paragraphs := s.Segment(pages)
	require.Len(t, paragraphs, 2)

	assert.Equal(t, DefaultSection, paragraphs[0].SectionTitle)
	assert.Equal(t, body1, paragraphs[0].Text)
	assert.Equal(t, 1, paragraphs[0].PageNumber)

	assert.Equal(t, "Exposure Therapy", paragraphs[1].SectionTitle)
	assert.Equal(t, body2, paragraphs[1].Text)
}

func TestSegmenter_Segment_ShortFragmentSurvivesHeading(t *testing.T) {
	s := New(14.0)

	body := "Relaxation training teaches clients to release muscle tension on cue."

	pages := []domain.Page{
		{
			Number: 1,
			Lines: []domain.Line{
				lineWithFont("See table below.", 10),
				lineWithFont("RELAXATION TRAINING", 16),
				lineWithFont(body, 10),
			},
		},
	}

	paragraphs := s.Segment(pages)
	require.Len(t, paragraphs, 1)

	// The fragment before the heading was too short to emit on its own,
	// so it carries into the new section's first paragraph.
	assert.Equal(t, "Relaxation Training", paragraphs[0].SectionTitle)
	assert.Equal(t, "See table below. "+body, paragraphs[0].Text)
}

func TestSegmenter_Segment_ShortFragmentDiscardedAtPageEnd(t *testing.T) {
	s := New(14.0)

	pages := []domain.Page{
		{
			Number: 1,
			Lines:  []domain.Line{lineWithFont("See table below.", 10)},
		},
		{
			Number: 2,
			Lines: []domain.Line{
				lineWithFont("Standardised measures are administered at baseline and at discharge.", 10),
			},
		},
	}

	paragraphs := s.Segment(pages)
	require.Len(t, paragraphs, 1)
	assert.NotContains(t, paragraphs[0].Text, "See table below.")
	assert.Equal(t, 2, paragraphs[0].PageNumber)
}

func TestSegmenter_Segment_FlushesAtPageBoundary(t *testing.T) {
	s := New(14.0)

	pages := []domain.Page{
		{
			Number: 1,
			Lines: []domain.Line{
				lineWithFont("ASSESSMENT", 16),
				lineWithFont("The intake interview establishes history, risk and presenting problems.", 10),
			},
		},
		{
			Number: 2,
			Lines: []domain.Line{
				lineWithFont("Standardised measures are administered at baseline and at discharge.", 10),
			},
		},
	}

	paragraphs := s.Segment(pages)
	require.Len(t, paragraphs, 2)

	// The section carries across pages; the paragraph does not.
	assert.Equal(t, "Assessment", paragraphs[0].SectionTitle)
	assert.Equal(t, 1, paragraphs[0].PageNumber)
	assert.Equal(t, "Assessment", paragraphs[1].SectionTitle)
	assert.Equal(t, 2, paragraphs[1].PageNumber)
}

func TestSegmenter_Segment_JoinsLinesWithinParagraph(t *testing.T) {
	s := New(14.0)

	pages := []domain.Page{
		{
			Number: 1,
			Lines: []domain.Line{
				lineWithFont("Relapse prevention planning begins in the final", 10),
				lineWithFont("sessions and is rehearsed with the client.", 10),
			},
		},
	}

	paragraphs := s.Segment(pages)
	require.Len(t, paragraphs, 1)
	assert.Equal(t,
		"Relapse prevention planning begins in the final sessions and is rehearsed with the client.",
		paragraphs[0].Text)
}

func TestSegmenter_Segment_DropsShortParagraphs(t *testing.T) {
	s := New(14.0)

	pages := []domain.Page{
		{
			Number: 1,
			Lines: []domain.Line{
				lineWithFont("Page 12", 10),
				lineWithFont("", 10),
			},
		},
	}

	assert.Empty(t, s.Segment(pages))
}

func TestSegmenter_Segment_SkipsLinesWithoutFontInfo(t *testing.T) {
	s := New(14.0)

	pages := []domain.Page{
		{
			Number: 1,
			Lines: []domain.Line{
				{Spans: []domain.Span{{Text: "watermark text from an image layer overlayed on the page"}}},
			},
		},
	}

	assert.Empty(t, s.Segment(pages))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Anxiety Disorders", titleCase("ANXIETY DISORDERS"))
	assert.Equal(t, "Graded Exposure", titleCase("graded exposure"))
	assert.Equal(t, "3.1 Intake", titleCase("3.1 INTAKE"))
	assert.Equal(t, "", titleCase("   "))
}
