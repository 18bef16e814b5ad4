package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"naicstag/internal/domain"
)

// ClassifierPort is the TUI-facing subset of the classifier service.
type ClassifierPort interface {
	Classify(query string) (*domain.MatchReport, error)
}

// Model is the Bubble Tea model for the interactive classifier.
type Model struct {
	service  ClassifierPort
	input    textinput.Model
	viewport viewport.Model
	report   *domain.MatchReport
	summary  string
	status   string
	cursor   int
	ready    bool
}

// New creates a new TUI model instance. summary is shown under the header.
func New(service ClassifierPort, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Input a company description and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{service: service, input: ti, viewport: vp, summary: summary, status: "Corpus loaded. Describe a company."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header+summary, status, input box, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderReport())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				report, err := m.service.Classify(q)
				if err != nil {
					m.status = "Error: " + err.Error()
					m.report = nil
				} else {
					m.status = fmt.Sprintf("Top %d subsectors for %q", len(report.Matches), q)
					m.report = report
					m.cursor = 0
				}
				m.viewport.SetContent(m.renderReport())
				return m, nil
			}
		case "down":
			if m.report != nil && len(m.report.Matches) > 0 {
				m.cursor = (m.cursor + 1) % len(m.report.Matches)
				m.viewport.SetContent(m.renderReport())
				return m, nil
			}
		case "up":
			if m.report != nil && len(m.report.Matches) > 0 {
				n := len(m.report.Matches)
				m.cursor = (m.cursor - 1 + n) % n
				m.viewport.SetContent(m.renderReport())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and current report.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("NAICS Subsector Tagger")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderReport() string {
	if m.report == nil || len(m.report.Matches) == 0 {
		return "No results yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "cleaned: %s\n\n", m.report.Cleaned)
	for i, match := range m.report.Matches {
		line := FormatMatch(match)
		if i == m.cursor {
			line = highlightStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	sel := m.report.Matches[m.cursor]
	fmt.Fprintf(&b, "\nscore=%.3f", sel.Score)
	if len(sel.Shared) > 0 {
		fmt.Fprintf(&b, "  shared: %s", strings.Join(sel.Shared, ", "))
	}
	return b.String()
}

// FormatMatch renders a match as "<rank>: <code> -- <name>".
func FormatMatch(match domain.Match) string {
	return fmt.Sprintf("%d: %s -- %s", match.Rank, match.Code, match.Name)
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)
