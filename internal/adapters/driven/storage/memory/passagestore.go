// Package memory provides in-memory implementations of the storage
// ports, used in tests and as a fallback when no data directory is
// writable.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/psyra-labs/psyra-cli/internal/core/domain"
	"github.com/psyra-labs/psyra-cli/internal/core/ports/driven"
)

// Ensure PassageStore implements the interface.
var _ driven.PassageStore = (*PassageStore)(nil)

// PassageStore is an in-memory implementation of driven.PassageStore.
type PassageStore struct {
	mu       sync.RWMutex
	passages map[string]domain.Passage
}

// NewPassageStore creates a new in-memory passage store.
func NewPassageStore() *PassageStore {
	return &PassageStore{
		passages: make(map[string]domain.Passage),
	}
}

// SavePassages stores or updates passages.
func (s *PassageStore) SavePassages(_ context.Context, passages []domain.Passage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range passages {
		if p.ChunkID == "" {
			return domain.ErrInvalidInput
		}
		s.passages[p.ChunkID] = p
	}
	return nil
}

// GetPassage retrieves a passage by chunk ID.
func (s *PassageStore) GetPassage(_ context.Context, chunkID string) (*domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.passages[chunkID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// ListPassages returns all passages for a book, ordered by sequence.
func (s *PassageStore) ListPassages(_ context.Context, bookName string) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Passage
	for _, p := range s.passages {
		if p.BookName == bookName {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Sequence() < result[j].Sequence()
	})
	return result, nil
}

// ListAll returns every stored passage, ordered by book and sequence.
func (s *PassageStore) ListAll(_ context.Context) ([]domain.Passage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Passage, 0, len(s.passages))
	for _, p := range s.passages {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].BookName != result[j].BookName {
			return result[i].BookName < result[j].BookName
		}
		return result[i].Sequence() < result[j].Sequence()
	})
	return result, nil
}

// DeleteBook removes all passages for a book.
func (s *PassageStore) DeleteBook(_ context.Context, bookName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.passages {
		if p.BookName == bookName {
			delete(s.passages, id)
		}
	}
	return nil
}
