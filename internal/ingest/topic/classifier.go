// Package topic provides a keyword-based topic classifier for passages.
package topic

import (
	"strings"

	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.TopicClassifier = (*Classifier)(nil)

// DefaultLabel is returned when no keyword matches.
const DefaultLabel = "General"

// rule pairs a topic label with its trigger keywords.
// Declaration order matters: the first matching rule wins.
type rule struct {
	label    string
	keywords []string
}

// defaultRules cover the clinical corpus this system indexes.
var defaultRules = []rule{
	{"CBT", []string{"cognitive behavioral", "cbt", "beck"}},
	{"Anxiety", []string{"anxiety", "panic", "phobia", "worry"}},
	{"Depression", []string{"depression", "hopeless", "sad"}},
	{"Psychosis", []string{"hallucination", "delusion", "schizophrenia"}},
	{"PTSD", []string{"ptsd", "trauma", "flashback"}},
	{"Diagnosis", []string{"criteria", "diagnosis", "symptoms", "disorder"}},
	{"Assessment", []string{"assessment", "intake", "evaluation"}},
	{"Therapy Process", []string{"session", "therapist", "rapport", "treatment"}},
}

// Classifier maps passage text to a fixed topic label set by substring
// keyword matching. Deterministic and side-effect free.
type Classifier struct {
	rules []rule
}

// New creates a classifier with the default clinical topic rules.
func New() *Classifier {
	return &Classifier{rules: defaultRules}
}

// Classify returns the first topic whose keywords appear in the text,
// or DefaultLabel when none match.
func (c *Classifier) Classify(text string) string {
	text = strings.ToLower(text)
	for _, r := range c.rules {
		for _, kw := range r.keywords {
			if strings.Contains(text, kw) {
				return r.label
			}
		}
	}
	return DefaultLabel
}

// Labels returns the classifier's label set in declaration order,
// excluding DefaultLabel.
func (c *Classifier) Labels() []string {
	labels := make([]string, len(c.rules))
	for i, r := range c.rules {
		labels[i] = r.label
	}
	return labels
}
