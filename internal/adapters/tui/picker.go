package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

// PickResult holds the outcome of a task picker interaction.
// Task is nil when the user chose to start without a task.
type PickResult struct {
	Task    *domain.Task
	Aborted bool
}

type taskPickerModel struct {
	tasks    []*domain.Task
	filter   textinput.Model
	visible  []int // indexes into tasks; -1 is the "no task" row
	cursor   int
	chosen   bool
	aborted  bool
	palette  Palette
	maxShown int
}

func newTaskPicker(tasks []*domain.Task, theme domain.Theme) taskPickerModel {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.CharLimit = 80
	ti.Width = 40
	ti.Focus()

	m := taskPickerModel{
		tasks:    tasks,
		filter:   ti,
		palette:  PaletteFor(theme),
		maxShown: 10,
	}
	m.applyFilter()
	return m
}

func (m *taskPickerModel) applyFilter() {
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		m.visible = []int{-1}
		for i := range m.tasks {
			m.visible = append(m.visible, i)
		}
	} else {
		titles := make([]string, len(m.tasks))
		for i, t := range m.tasks {
			titles[i] = t.Title
		}
		m.visible = m.visible[:0]
		for _, match := range fuzzy.Find(query, titles) {
			m.visible = append(m.visible, match.Index)
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

func (m taskPickerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m taskPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "ctrl+p":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "ctrl+n":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.visible) > 0 {
				m.chosen = true
				return m, tea.Quit
			}
			return m, nil
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m taskPickerModel) selected() *domain.Task {
	if !m.chosen || len(m.visible) == 0 {
		return nil
	}
	idx := m.visible[m.cursor]
	if idx < 0 {
		return nil
	}
	return m.tasks[idx]
}

func (m taskPickerModel) View() string {
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.palette.Title)
	activeStyle := lipgloss.NewStyle().Foreground(m.palette.Work).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.palette.Help)

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("  Pick a task") + " " + m.filter.View() + "\n\n")

	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("    no matching tasks") + "\n")
	}
	start := 0
	if m.cursor >= m.maxShown {
		start = m.cursor - m.maxShown + 1
	}
	for i := start; i < len(m.visible) && i < start+m.maxShown; i++ {
		line := m.rowLabel(m.visible[i])
		if i == m.cursor {
			b.WriteString("  " + activeStyle.Render("▸ "+line) + "\n")
		} else {
			b.WriteString(dimStyle.Render("    "+line) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("  ↑/↓ navigate · enter select · esc cancel") + "\n")
	return b.String()
}

func (m taskPickerModel) rowLabel(idx int) string {
	if idx < 0 {
		return domain.NoActiveTaskLabel
	}
	t := m.tasks[idx]
	marker := lipgloss.NewStyle().Foreground(m.palette.PriorityColor(t.Priority)).Render("●")
	return fmt.Sprintf("%s %-32s %d/%d", marker, t.Title, t.CompletedPomodoros, t.EstimatedPomodoros)
}

// RunTaskPicker lets the user choose one of the given tasks, or none.
func RunTaskPicker(tasks []*domain.Task, theme domain.Theme) (PickResult, error) {
	p := tea.NewProgram(newTaskPicker(tasks, theme))
	result, err := p.Run()
	if err != nil {
		return PickResult{Aborted: true}, fmt.Errorf("failed to run task picker: %w", err)
	}

	final := result.(taskPickerModel)
	if final.aborted {
		return PickResult{Aborted: true}, nil
	}
	return PickResult{Task: final.selected()}, nil
}
