package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naicstag/internal/domain"
)

type fakeClassifier struct {
	report *domain.MatchReport
	err    error
	got    string
}

func (f *fakeClassifier) Classify(query string) (*domain.MatchReport, error) {
	f.got = query
	return f.report, f.err
}

func sampleReport() *domain.MatchReport {
	return &domain.MatchReport{
		Query:   "We farm",
		Cleaned: "we farm",
		Matches: []domain.Match{
			{Rank: 1, Code: "11", Name: "Agriculture", Score: 0.8, Shared: []string{"farm"}},
			{Rank: 2, Code: "44", Name: "Retail", Score: 0.1},
			{Rank: 3, Code: "54", Name: "Professional Services"},
		},
	}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestModel_ClassifiesOnEnter(t *testing.T) {
	fake := &fakeClassifier{report: sampleReport()}
	m := New(fake, "3 subsectors")
	assert.Equal(t, "Loading...", m.View())

	m = send(t, m,
		tea.WindowSizeMsg{Width: 100, Height: 30},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("We farm")},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	assert.Equal(t, "We farm", fake.got)
	require.NotNil(t, m.report)
	view := m.View()
	assert.Contains(t, view, "1: 11 -- Agriculture")
	assert.Contains(t, view, "shared: farm")
	assert.Contains(t, m.status, "Top 3")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 2, m.cursor)
}

func TestModel_ShowsErrors(t *testing.T) {
	fake := &fakeClassifier{err: errors.New("normalize: empty query")}
	m := New(fake, "")
	m = send(t, m,
		tea.WindowSizeMsg{Width: 80, Height: 24},
		tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("123")},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	assert.Nil(t, m.report)
	assert.Contains(t, m.status, "empty query")
	assert.Contains(t, m.renderReport(), "No results yet.")
}

func TestModel_QuitKeys(t *testing.T) {
	m := New(&fakeClassifier{}, "")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestFormatMatch(t *testing.T) {
	assert.Equal(t, "2: 44 -- Retail", FormatMatch(domain.Match{Rank: 2, Code: "44", Name: "Retail"}))
}
