package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xab-mack/solhunt/internal/model"
	"github.com/xab-mack/solhunt/internal/report"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	snippetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#64748B")).
			Padding(0, 1)

	severityStyles = map[model.Severity]lipgloss.Style{
		model.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F87171")).Bold(true),
		model.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FBBF24")),
		model.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#38BDF8")),
		model.SeverityGas:      lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")),
		model.SeverityInformal: lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")),
	}
)

type item struct {
	finding model.MetaFinding
}

func (i item) Title() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(i.finding.Severity.String()), i.finding.Summary)
}

func (i item) Description() string {
	loc := i.finding.Meta.File
	if i.finding.Meta.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", loc, i.finding.Meta.Line, i.finding.Meta.Column)
	}
	return report.RuleID(i.finding.Finding) + "  " + loc
}

func (i item) FilterValue() string { return i.Title() + " " + i.Description() }

type browser struct {
	list     list.Model
	result   *model.ScanResult
	detail   bool
	quitting bool
}

func newBrowser(res *model.ScanResult) browser {
	fs := report.Ordered(res.Findings)
	items := make([]list.Item, 0, len(fs))
	for _, f := range fs {
		items = append(items, item{finding: f})
	}
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "solhunt findings"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	return browser{list: l, result: res}
}

func (m browser) Init() tea.Cmd { return nil }

func (m browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, max(msg.Height-v-2, 5))
		return m, nil
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if _, ok := m.list.SelectedItem().(item); ok {
				m.detail = !m.detail
			}
			return m, nil
		case "esc":
			if m.detail {
				m.detail = false
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browser) View() string {
	if m.quitting {
		return ""
	}
	status := statusStyle.Render(fmt.Sprintf("%d findings | %d suppressed | run %s",
		m.result.Findings.Count(), m.result.Suppressed, m.result.RunID))
	if !m.detail {
		return docStyle.Render(m.list.View() + "\n" + status)
	}
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return docStyle.Render(m.list.View() + "\n" + status)
	}
	return docStyle.Render(renderDetail(it.finding) + "\n\n" + statusStyle.Render("esc: back  q: quit"))
}

func renderDetail(f model.MetaFinding) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.Summary))
	b.WriteString("\n")
	b.WriteString(severityStyles[f.Severity].Render(f.Severity.String()))
	b.WriteString("  " + item{finding: f}.Description())
	if f.Comment != "" {
		b.WriteString("\n" + f.Comment)
	}
	if f.Description != "" {
		b.WriteString("\n\n" + f.Description)
	}
	if f.Meta.Snippet != "" {
		b.WriteString("\n\n" + snippetStyle.Render(f.Meta.Snippet))
	}
	return b.String()
}

// Run opens the interactive findings browser.
func Run(res *model.ScanResult) error {
	_, err := tea.NewProgram(newBrowser(res), tea.WithAltScreen()).Run()
	return err
}
