// Package ranking scores reference subsectors against a query and selects
// the best matches.
package ranking

import (
	"errors"
	"sort"

	"naicstag/internal/domain"
	"naicstag/internal/embedding/tfidf"
)

// Rank scores matrix rows 1..N against the query in row 0. Because rows are
// L2-normalized the dot product is the cosine similarity. Result indices are
// corpus positions (row-1), sorted by descending score with ties left in
// corpus order.
func Rank(m *tfidf.Matrix) ([]domain.ScoredIndex, error) {
	if m == nil || len(m.Rows) == 0 {
		return nil, errors.New("weight matrix has no query row")
	}
	return RankRows(m.Rows[0], m.Rows[1:]), nil
}

// RankRows scores every row against query.
func RankRows(query tfidf.Row, rows []tfidf.Row) []domain.ScoredIndex {
	scores := make([]domain.ScoredIndex, len(rows))
	for i, row := range rows {
		scores[i] = domain.ScoredIndex{Index: i, Score: query.Dot(row)}
	}
	SortScores(scores)
	return scores
}

// SortScores orders scores by descending score, keeping the relative order
// of equal scores.
func SortScores(scores []domain.ScoredIndex) {
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
}
