package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	c := New()

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "cbt keyword",
			text: "Beck's model of automatic thoughts underpins the protocol.",
			want: "CBT",
		},
		{
			name: "anxiety keyword",
			text: "Panic attacks peak within minutes and subside on their own.",
			want: "Anxiety",
		},
		{
			name: "depression keyword",
			text: "Clients often describe feeling hopeless about the future.",
			want: "Depression",
		},
		{
			name: "psychosis keyword",
			text: "Auditory hallucination is the most common presentation.",
			want: "Psychosis",
		},
		{
			name: "ptsd keyword",
			text: "A flashback can be triggered by sensory cues.",
			want: "PTSD",
		},
		{
			name: "diagnosis keyword",
			text: "The criteria require duration of at least six months.",
			want: "Diagnosis",
		},
		{
			name: "assessment keyword",
			text: "The intake interview covers history and presenting problems.",
			want: "Assessment",
		},
		{
			name: "therapy process keyword",
			text: "Building rapport early predicts outcomes.",
			want: "Therapy Process",
		},
		{
			name: "case insensitive",
			text: "ANXIETY AND AVOIDANCE",
			want: "Anxiety",
		},
		{
			name: "no match falls back to default",
			text: "The appendix lists recommended further reading.",
			want: DefaultLabel,
		},
		{
			name: "empty text",
			text: "",
			want: DefaultLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

// Rule order is part of the contract: a passage mentioning both CBT and
// anxiety is filed under CBT because its rule is declared first.
func TestClassifier_Classify_FirstMatchWins(t *testing.T) {
	c := New()

	got := c.Classify("CBT is the first-line treatment for anxiety disorders.")
	assert.Equal(t, "CBT", got)

	// "worry" (Anxiety) precedes "symptoms" (Diagnosis).
	got = c.Classify("Excessive worry is among the listed symptoms.")
	assert.Equal(t, "Anxiety", got)
}

func TestClassifier_Labels(t *testing.T) {
	labels := New().Labels()

	assert.Equal(t, []string{
		"CBT", "Anxiety", "Depression", "Psychosis",
		"PTSD", "Diagnosis", "Assessment", "Therapy Process",
	}, labels)
	assert.NotContains(t, labels, DefaultLabel)
}
