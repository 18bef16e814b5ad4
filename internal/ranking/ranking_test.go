package ranking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naicstag/internal/domain"
	"naicstag/internal/embedding/tfidf"
	"naicstag/internal/normalizer"
)

func sampleCorpus() []domain.Subsector {
	return []domain.Subsector{
		{Code: "11", Name: "Agriculture", Content: "farm crop livestock"},
		{Code: "44", Name: "Retail", Content: "store shop sell merchandise"},
		{Code: "54", Name: "Professional Services", Content: "consult advice legal"},
	}
}

func buildMatrix(t *testing.T, query string, corpus []domain.Subsector) *tfidf.Matrix {
	t.Helper()
	docs := []string{query}
	for _, rec := range corpus {
		docs = append(docs, rec.Content)
	}
	m, err := tfidf.NewBuilder(tfidf.DefaultOptions().Relaxed()).Build(docs)
	require.NoError(t, err)
	return m
}

func TestRankAndSelect_EndToEnd(t *testing.T) {
	corpus := sampleCorpus()
	query := normalizer.Default().Normalize("We sell crops and livestock from our farm.")
	m := buildMatrix(t, query, corpus)

	ranked, err := Rank(m)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	matches, err := Select(ranked, corpus)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "11", matches[0].Code)
	assert.Equal(t, "Agriculture", matches[0].Name)
	assert.Equal(t, "44", matches[1].Code)
	assert.Equal(t, "54", matches[2].Code)
	for i, match := range matches {
		assert.Equal(t, i+1, match.Rank)
	}
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.Greater(t, matches[1].Score, 0.0)
	assert.Zero(t, matches[2].Score)
}

func TestRank_SelfSimilarityIsMaximal(t *testing.T) {
	n := normalizer.Default()
	sources := []string{
		"Growing crops and raising livestock on farms",
		"Retail stores selling general merchandise",
		"Legal, accounting and consulting services",
		"Manufacturing of steel, aluminum and metal products",
	}
	corpus := make([]domain.Subsector, len(sources))
	for i, src := range sources {
		corpus[i] = domain.Subsector{Code: string(rune('A' + i)), Content: n.Normalize(src)}
	}
	for target, src := range sources {
		ranked, err := Rank(buildMatrix(t, n.Normalize(src), corpus))
		require.NoError(t, err)
		assert.Equal(t, target, ranked[0].Index, "query %q", src)
		assert.InDelta(t, 1.0, ranked[0].Score, 1e-9)
	}
}

func TestRank_TiesKeepCorpusOrder(t *testing.T) {
	corpus := []domain.Subsector{
		{Code: "1", Content: "store shop"},
		{Code: "2", Content: "farm crop"},
		{Code: "3", Content: "consult legal"},
		{Code: "4", Content: "farm crop"},
	}
	ranked, err := Rank(buildMatrix(t, "farm crop", corpus))
	require.NoError(t, err)
	assert.Equal(t, 1, ranked[0].Index)
	assert.Equal(t, 3, ranked[1].Index)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, 0, ranked[2].Index)
	assert.Equal(t, 2, ranked[3].Index)
}

func TestRank_EmptyQueryFallsBackToCorpusOrder(t *testing.T) {
	corpus := sampleCorpus()
	ranked, err := Rank(buildMatrix(t, "", corpus))
	require.NoError(t, err)
	for i, r := range ranked {
		assert.Equal(t, i, r.Index)
		assert.Zero(t, r.Score)
	}
}

func TestRank_NilMatrix(t *testing.T) {
	_, err := Rank(nil)
	assert.Error(t, err)
	_, err = Rank(&tfidf.Matrix{})
	assert.Error(t, err)
}

func TestSelect_CorpusSizeBoundary(t *testing.T) {
	corpus := sampleCorpus()

	_, err := Select([]domain.ScoredIndex{{Index: 0}, {Index: 1}}, corpus[:2])
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientCorpus))

	ranked := []domain.ScoredIndex{{Index: 2, Score: 0.9}, {Index: 0, Score: 0.5}, {Index: 1, Score: 0.1}}
	matches, err := Select(ranked, corpus)
	require.NoError(t, err)
	codes := []string{matches[0].Code, matches[1].Code, matches[2].Code}
	assert.Equal(t, []string{"54", "11", "44"}, codes)
}

func TestSelect_RejectsShortRankingAndBadIndex(t *testing.T) {
	corpus := sampleCorpus()
	_, err := Select([]domain.ScoredIndex{{Index: 0}}, corpus)
	assert.ErrorIs(t, err, domain.ErrInsufficientCorpus)

	_, err = Select([]domain.ScoredIndex{{Index: 0}, {Index: 1}, {Index: 7}}, corpus)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInsufficientCorpus)
}

func TestSelect_OnlyTopThree(t *testing.T) {
	corpus := append(sampleCorpus(), domain.Subsector{Code: "21", Name: "Mining"})
	ranked := []domain.ScoredIndex{{Index: 3}, {Index: 2}, {Index: 1}, {Index: 0}}
	matches, err := Select(ranked, corpus)
	require.NoError(t, err)
	assert.Len(t, matches, domain.MatchCount)
	assert.Equal(t, "21", matches[0].Code)
}

func TestExplain_OrdersByContribution(t *testing.T) {
	vocab := []string{"crop", "farm", "livestock", "shop"}
	query := tfidf.Row{Indices: []int{0, 1, 2}, Values: []float64{0.2, 0.5, 0.4}}
	doc := tfidf.Row{Indices: []int{0, 1, 2, 3}, Values: []float64{0.9, 0.1, 0.3, 0.2}}

	// contributions: crop 0.18, farm 0.05, livestock 0.12
	assert.Equal(t, []string{"crop", "livestock", "farm"}, Explain(vocab, query, doc, 5))
	assert.Equal(t, []string{"crop"}, Explain(vocab, query, doc, 1))
	assert.Nil(t, Explain(vocab, query, doc, 0))
	assert.Empty(t, Explain(vocab, query, tfidf.Row{Indices: []int{3}, Values: []float64{1}}, 3))
}

func TestSortScores_Stable(t *testing.T) {
	scores := []domain.ScoredIndex{
		{Index: 0, Score: 0.1},
		{Index: 1, Score: 0.5},
		{Index: 2, Score: 0.1},
		{Index: 3, Score: 0.5},
	}
	SortScores(scores)
	order := make([]int, len(scores))
	for i, s := range scores {
		order[i] = s.Index
	}
	assert.Equal(t, []int{1, 3, 0, 2}, order)
}
