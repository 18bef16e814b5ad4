package ranking

import (
	"sort"

	"naicstag/internal/embedding/tfidf"
)

// Explain returns up to limit vocabulary terms shared by query and doc,
// ordered by their contribution to the cosine score. Equal contributions
// keep vocabulary order.
func Explain(vocabulary []string, query, doc tfidf.Row, limit int) []string {
	if limit <= 0 {
		return nil
	}
	type contribution struct {
		col    int
		weight float64
	}
	var shared []contribution
	i, j := 0, 0
	for i < len(query.Indices) && j < len(doc.Indices) {
		switch {
		case query.Indices[i] == doc.Indices[j]:
			shared = append(shared, contribution{query.Indices[i], query.Values[i] * doc.Values[j]})
			i++
			j++
		case query.Indices[i] < doc.Indices[j]:
			i++
		default:
			j++
		}
	}
	sort.SliceStable(shared, func(a, b int) bool { return shared[a].weight > shared[b].weight })
	if len(shared) > limit {
		shared = shared[:limit]
	}
	terms := make([]string, 0, len(shared))
	for _, c := range shared {
		if c.col < len(vocabulary) {
			terms = append(terms, vocabulary[c.col])
		}
	}
	return terms
}
