package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"librarian/internal/domain"
	"librarian/internal/vectorstore"
)

// Storage is an in-memory vector store using brute-force cosine distance.
// Entries are keyed by ID; upserting an existing ID replaces it in place.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	order     []string
	entries   map[string]domain.IndexEntry
}

// NewStorage returns an empty in-memory store.
func NewStorage() *Storage {
	return &Storage{entries: make(map[string]domain.IndexEntry)}
}

func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension != 0 && s.dimension != dimension && len(s.entries) > 0 {
		return fmt.Errorf("store holds %d-dim vectors, got %d", s.dimension, dimension)
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *Storage) Upsert(ctx context.Context, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		if e.ID == "" {
			return errors.New("entry without id")
		}
		if s.dimension != 0 && len(e.Embedding) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	for _, e := range entries {
		if _, ok := s.entries[e.ID]; !ok {
			s.order = append(s.order, e.ID)
		}
		s.entries[e.ID] = e
	}
	return nil
}

func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.Hit, error) {
	s.mu.RLock()
	all := make([]domain.IndexEntry, 0, len(s.order))
	for _, id := range s.order {
		all = append(all, s.entries[id])
	}
	s.mu.RUnlock()
	return vectorstore.Nearest(all, vector, topK), nil
}

func (s *Storage) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.entries = make(map[string]domain.IndexEntry)
	return nil
}

func (s *Storage) Close() error { return nil }

var _ domain.VectorStore = (*Storage)(nil)
