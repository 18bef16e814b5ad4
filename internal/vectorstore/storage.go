package vectorstore

import "naicstag/internal/domain"

// Storage keeps reference vectors in corpus order and supports similarity
// search against a query vector.
type Storage interface {
	Init(dimension int) error
	Upsert(records []domain.Subsector, vectors [][]float64) error
	Search(vector []float64, topK int) ([]domain.ScoredIndex, error)
	Record(index int) (domain.Subsector, []float64, bool)
	Len() int
	Clear() error
}
