// Package bm25 implements an in-memory BM25 lexical index.
//
// The index is rebuilt from the passage store at startup, which keeps
// it trivially consistent with the stored corpus and avoids a second
// on-disk format for a structure that loads in milliseconds at this
// scale.
package bm25

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
)

var _ driven.LexicalIndex = (*Index)(nil)

// Standard BM25 parameters.
const (
	k1 = 1.5
	b  = 0.75
)

type document struct {
	chunkID string
	length  int
	freqs   map[string]int
}

// Index scores passages with Okapi BM25. Safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	docs     []document
	pos      map[string]int
	docFreqs map[string]int
	totalLen int
}

func New() *Index {
	return &Index{
		pos:      make(map[string]int),
		docFreqs: make(map[string]int),
	}
}

// Index adds a passage. Indexing the same chunk ID again replaces the
// previous entry.
func (ix *Index) Index(_ context.Context, passage domain.Passage) error {
	terms := tokenize(passage.Text)
	freqs := make(map[string]int, len(terms))
	for _, t := range terms {
		freqs[t]++
	}
	doc := document{chunkID: passage.ChunkID, length: len(terms), freqs: freqs}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if at, ok := ix.pos[passage.ChunkID]; ok {
		old := ix.docs[at]
		ix.totalLen -= old.length
		for term := range old.freqs {
			ix.docFreqs[term]--
			if ix.docFreqs[term] == 0 {
				delete(ix.docFreqs, term)
			}
		}
		ix.docs[at] = doc
	} else {
		ix.pos[passage.ChunkID] = len(ix.docs)
		ix.docs = append(ix.docs, doc)
	}

	ix.totalLen += doc.length
	for term := range freqs {
		ix.docFreqs[term]++
	}
	return nil
}

// Search returns the top k passages by BM25 score, descending.
// Passages that match no query term are omitted.
func (ix *Index) Search(_ context.Context, query string, k int) ([]driven.LexicalHit, error) {
	if k <= 0 {
		return nil, nil
	}
	terms := tokenize(query)
	if len(terms) == 0 {
		return nil, nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.docs) == 0 {
		return nil, nil
	}
	avgLen := float64(ix.totalLen) / float64(len(ix.docs))

	hits := make([]driven.LexicalHit, 0, k)
	for _, doc := range ix.docs {
		score := ix.score(doc, terms, avgLen)
		if score > 0 {
			hits = append(hits, driven.LexicalHit{ChunkID: doc.chunkID, Score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (ix *Index) score(doc document, terms []string, avgLen float64) float64 {
	var score float64
	n := float64(len(ix.docs))
	for _, term := range terms {
		tf := float64(doc.freqs[term])
		if tf == 0 {
			continue
		}
		df := float64(ix.docFreqs[term])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		norm := 1 - b + b*float64(doc.length)/avgLen
		score += idf * tf * (k1 + 1) / (tf + k1*norm)
	}
	return score
}

// Count returns the number of indexed passages.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}

func (ix *Index) Close() error {
	return nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
