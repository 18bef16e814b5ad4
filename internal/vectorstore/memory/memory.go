package memory

import (
	"errors"
	"sort"
	"sync"

	"naicstag/internal/domain"
)

// Storage is a simple in-memory vector store using brute-force cosine
// similarity over L2-normalized vectors.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	records   []domain.Subsector
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.records = nil
	return nil
}

// Upsert appends records and their vectors, preserving insertion order.
func (s *Storage) Upsert(records []domain.Subsector, vectors [][]float64) error {
	if len(records) != len(vectors) {
		return errors.New("records and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.records = append(s.records, records...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search scores every stored vector against vector and returns the best
// topK (all when topK <= 0). Equal scores keep insertion order.
func (s *Storage) Search(vector []float64, topK int) ([]domain.ScoredIndex, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, errors.New("query dimension mismatch")
	}
	// cosine similarity (vectors are assumed L2-normalized)
	scores := make([]domain.ScoredIndex, len(s.vectors))
	for i := range s.vectors {
		scores[i] = domain.ScoredIndex{Index: i, Score: dot(s.vectors[i], vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if topK > 0 && topK < len(scores) {
		scores = scores[:topK]
	}
	return scores, nil
}

// Record returns the stored record and vector at index.
func (s *Storage) Record(index int) (domain.Subsector, []float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.records) {
		return domain.Subsector{}, nil, false
	}
	return s.records[index], s.vectors[index], true
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.records = nil
	return nil
}

// dot accumulates in index order so identical vectors score identically.
func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
