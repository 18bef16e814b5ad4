package ranking

import (
	"fmt"

	"naicstag/internal/domain"
)

// Select maps the first domain.MatchCount ranked entries back to their
// subsectors, labeled rank 1, 2, 3.
func Select(ranked []domain.ScoredIndex, corpus []domain.Subsector) ([]domain.Match, error) {
	if len(corpus) < domain.MatchCount {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInsufficientCorpus, len(corpus))
	}
	if len(ranked) < domain.MatchCount {
		return nil, fmt.Errorf("%w: only %d ranked entries", domain.ErrInsufficientCorpus, len(ranked))
	}
	matches := make([]domain.Match, 0, domain.MatchCount)
	for i, r := range ranked[:domain.MatchCount] {
		if r.Index < 0 || r.Index >= len(corpus) {
			return nil, fmt.Errorf("ranked index %d outside corpus of %d entries", r.Index, len(corpus))
		}
		rec := corpus[r.Index]
		matches = append(matches, domain.Match{
			Rank:  i + 1,
			Code:  rec.Code,
			Name:  rec.Name,
			Score: r.Score,
		})
	}
	return matches, nil
}
