// Package historytui is the read-only history browser — a separate,
// non-core TUI explicitly outside the line editor (spec §4.5 requires the
// editor itself be built directly on VT sequences "without a curses-like
// library"). It is grounded on the teacher's history_tui.go: the same
// list.Model/lipgloss title styling and quit/select key handling, adapted
// from browsing persisted chat sessions to browsing a supplied list of
// command-history lines.
package historytui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// entry is one browsable history line, newest first.
type entry struct {
	age  int // 0 = newest
	line string
}

func (e entry) Title() string       { return fmt.Sprintf("[%d] %s", e.age, e.line) }
func (e entry) Description() string { return "" }
func (e entry) FilterValue() string { return e.line }

// Model is the bubbletea model for the history browser.
type Model struct {
	list     list.Model
	Selected string
	quitting bool
}

// New builds a Model over lines, ordered newest-first (age 0 is the most
// recent entry, matching the history ring's Get(k) convention).
func New(lines []string) Model {
	items := make([]list.Item, len(lines))
	for i, l := range lines {
		items[i] = entry{age: i, line: l}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Command History"
	l.Styles.Title = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFF")).
		Background(lipgloss.Color("#7D56F4")).
		Padding(0, 1)

	return Model{list: l}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if e, ok := m.list.SelectedItem().(entry); ok {
				m.Selected = e.line
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := lipgloss.NewStyle().Margin(1, 2).GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return lipgloss.NewStyle().Margin(1, 2).Render(m.list.View())
}
