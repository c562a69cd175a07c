// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// Engine is the timer the model drives.
type Engine interface {
	Toggle(ctx context.Context) error
	Skip(ctx context.Context) error
	Reset(ctx context.Context) error
	SetDuration(ctx context.Context, minutes int) error
	Snapshot() domain.TimerState
}

// StateFunc loads the dashboard figures.
type StateFunc func(ctx context.Context) (*domain.CurrentState, error)

// ThemeFunc switches to the next theme and returns it.
type ThemeFunc func(ctx context.Context) (domain.Theme, error)

// Options configure a Model.
type Options struct {
	Engine     Engine
	State      StateFunc
	CycleTheme ThemeFunc
	Theme      domain.Theme
	Refresh    time.Duration
	Inline     bool
}

const (
	defaultRefresh     = 250 * time.Millisecond
	defaultToastMillis = 5000
)

type (
	refreshMsg      time.Time
	timerStateMsg   domain.TimerState
	sessionInfoMsg  domain.SessionInfo
	notificationMsg ports.Notification
	reloadMsg       struct{}
	currentStateMsg struct {
		state *domain.CurrentState
		err   error
	}
)

// Model represents the TUI state.
type Model struct {
	engine  Engine
	fetch   StateFunc
	cycle   ThemeFunc
	refresh time.Duration
	inline  bool
	now     func() time.Time

	keys     keyMap
	help     help.Model
	progress progress.Model
	theme    domain.Theme
	palette  Palette

	timer      domain.TimerState
	info       domain.SessionInfo
	summary    *domain.CurrentState
	toast      *ports.Notification
	toastUntil time.Time
	err        error
	width      int
	height     int
}

// NewModel creates a new TUI model.
func NewModel(opts Options) Model {
	if opts.Refresh <= 0 {
		opts.Refresh = defaultRefresh
	}
	m := Model{
		engine:  opts.Engine,
		fetch:   opts.State,
		cycle:   opts.CycleTheme,
		refresh: opts.Refresh,
		inline:  opts.Inline,
		now:     time.Now,
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	m.setTheme(opts.Theme)
	m.timer = m.engine.Snapshot()
	m.info = infoFromState(m.timer)
	return m
}

// Init starts the refresh loop and loads the dashboard figures.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.fetchCmd())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := context.Background()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(ctx, msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = min(msg.Width-8, 60)

	case refreshMsg:
		m.timer = m.engine.Snapshot()
		if m.toast != nil && !m.now().Before(m.toastUntil) {
			m.toast = nil
		}
		return m, m.refreshCmd()

	case timerStateMsg:
		m.timer = domain.TimerState(msg)

	case sessionInfoMsg:
		m.info = domain.SessionInfo(msg)
		m.timer = m.engine.Snapshot()
		return m, m.fetchCmd()

	case notificationMsg:
		n := ports.Notification(msg)
		if n.Duration <= 0 {
			n.Duration = defaultToastMillis
		}
		m.toast = &n
		m.toastUntil = m.now().Add(time.Duration(n.Duration) * time.Millisecond)

	case reloadMsg:
		return m, m.fetchCmd()

	case currentStateMsg:
		if msg.err != nil {
			m.err = msg.err
			break
		}
		m.summary = msg.state
		if msg.state != nil && msg.state.Settings.Theme.Valid() && msg.state.Settings.Theme != m.theme {
			m.setTheme(msg.state.Settings.Theme)
		}
	}
	return m, nil
}

func (m Model) handleKey(ctx context.Context, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Toggle):
		m.err = m.engine.Toggle(ctx)
	case key.Matches(msg, m.keys.Skip):
		m.err = m.engine.Skip(ctx)
	case key.Matches(msg, m.keys.Reset):
		m.err = m.engine.Reset(ctx)
	case key.Matches(msg, m.keys.Presets):
		idx := int(msg.String()[0] - '1')
		m.err = m.engine.SetDuration(ctx, domain.Presets[idx])
	case key.Matches(msg, m.keys.Theme):
		if m.cycle != nil {
			theme, err := m.cycle(ctx)
			if err != nil {
				m.err = err
			} else {
				m.setTheme(theme)
			}
		}
	}
	m.timer = m.engine.Snapshot()
	return m, nil
}

func (m *Model) setTheme(theme domain.Theme) {
	m.theme = theme
	m.palette = PaletteFor(theme)
	width := m.progress.Width
	m.progress = progress.New(progress.WithGradient(m.palette.GradientStart, m.palette.GradientEnd))
	if width > 0 {
		m.progress.Width = width
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

func (m Model) fetchCmd() tea.Cmd {
	if m.fetch == nil {
		return nil
	}
	fetch := m.fetch
	return func() tea.Msg {
		state, err := fetch(context.Background())
		return currentStateMsg{state: state, err: err}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 && !m.inline {
		return "Loading..."
	}
	if m.inline {
		return m.viewInline()
	}

	accent := m.palette.PhaseColor(m.timer.Phase)
	if m.isPaused() {
		accent = m.palette.Paused
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(m.palette.Title).MarginBottom(1)
	phaseStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	taskStyle := lipgloss.NewStyle().Foreground(m.palette.Task)
	helpStyle := lipgloss.NewStyle().Foreground(m.palette.Help)

	sections := []string{
		titleStyle.Render("♛ Royal Pomodoro"),
		phaseStyle.Render(m.phaseLine()),
		taskStyle.Render("Task: " + m.info.TaskLabel),
		"",
		renderBigTime(formatDuration(m.timer.TimeLeft), accent, m.width),
		"",
	}
	if badge := m.statusBadge(); badge != "" {
		sections = append(sections, badge, "")
	}
	sections = append(sections, m.progress.ViewAs(m.timer.Progress()))

	if line := m.summaryLine(); line != "" {
		sections = append(sections, "", helpStyle.Render(line))
	}
	if m.toast != nil {
		sections = append(sections, "", m.renderToast())
	}
	if m.err != nil {
		sections = append(sections, "", lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Render("Error: "+m.err.Error()))
	}
	sections = append(sections, "", m.help.View(m.keys))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) viewInline() string {
	accent := m.palette.PhaseColor(m.timer.Phase)
	if m.isPaused() {
		accent = m.palette.Paused
	}
	head := lipgloss.NewStyle().Bold(true).Foreground(accent).
		Render(fmt.Sprintf("%s  %s", formatDuration(m.timer.TimeLeft), m.phaseLine()))
	task := lipgloss.NewStyle().Foreground(m.palette.Task).Render(m.info.TaskLabel)

	lines := []string{head + "  " + task, m.progress.ViewAs(m.timer.Progress())}
	if m.toast != nil {
		lines = append(lines, m.renderToast())
	}
	if m.err != nil {
		lines = append(lines, "Error: "+m.err.Error())
	}
	lines = append(lines, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) phaseLine() string {
	line := domain.GetPhaseLabel(m.timer.Phase)
	if m.timer.Phase == domain.PhaseWork && m.timer.SessionsPerSet > 0 {
		line += fmt.Sprintf(" · Session %d of %d", m.info.Ordinal, m.timer.SessionsPerSet)
	}
	return line
}

func (m Model) isPaused() bool {
	return !m.timer.Running && m.timer.TimeLeft < m.timer.TotalTime
}

func (m Model) statusBadge() string {
	if m.timer.Running {
		return ""
	}
	label := "READY"
	if m.isPaused() {
		label = "⏸ PAUSED"
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(m.palette.Paused).
		Padding(0, 1).
		Render(label)
}

func (m Model) summaryLine() string {
	if m.summary == nil {
		return ""
	}
	s := m.summary
	return fmt.Sprintf("Today %s · Streak %d · Tasks %d/%d · Score %d",
		domain.FormatFocusTime(s.TodayMinutes),
		s.Statistics.CurrentStreak,
		s.TaskStats.Completed,
		s.TaskStats.Total,
		s.ProductivityScore)
}

func (m Model) renderToast() string {
	color := m.palette.Task
	switch m.toast.Kind {
	case ports.NotificationSuccess:
		color = m.palette.Break
	case ports.NotificationWarning, ports.NotificationError:
		color = m.palette.Work
	}
	title := lipgloss.NewStyle().Bold(true).Foreground(color).Render(m.toast.Title)
	return title + "  " + lipgloss.NewStyle().Foreground(m.palette.Help).Render(m.toast.Message)
}

func infoFromState(s domain.TimerState) domain.SessionInfo {
	info := domain.SessionInfo{
		Phase:     s.Phase,
		Ordinal:   s.SessionCount + 1,
		TaskLabel: domain.NoActiveTaskLabel,
	}
	if s.Task != nil {
		info.TaskLabel = s.Task.Title
	}
	return info
}

// formatDuration formats a duration as MM:SS.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
