package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

// Palette holds the colors of one theme.
type Palette struct {
	Work          lipgloss.Color
	Break         lipgloss.Color
	Paused        lipgloss.Color
	Title         lipgloss.Color
	Task          lipgloss.Color
	Help          lipgloss.Color
	GradientStart string
	GradientEnd   string
}

var palettes = map[domain.Theme]Palette{
	domain.ThemeDark: {
		Work:          "#F87171",
		Break:         "#34D399",
		Paused:        "#9CA3AF",
		Title:         "#F9FAFB",
		Task:          "#FBBF24",
		Help:          "#6B7280",
		GradientStart: "#F87171",
		GradientEnd:   "#FBBF24",
	},
	domain.ThemeRoyal: {
		Work:          "#60A5FA",
		Break:         "#93C5FD",
		Paused:        "#64748B",
		Title:         "#FFD700",
		Task:          "#FFD700",
		Help:          "#94A3B8",
		GradientStart: "#1E3A8A",
		GradientEnd:   "#60A5FA",
	},
	domain.ThemePurple: {
		Work:          "#A78BFA",
		Break:         "#F0ABFC",
		Paused:        "#71717A",
		Title:         "#DDD6FE",
		Task:          "#F0ABFC",
		Help:          "#A1A1AA",
		GradientStart: "#7C3AED",
		GradientEnd:   "#F0ABFC",
	},
	domain.ThemeGold: {
		Work:          "#FFD700",
		Break:         "#FDE68A",
		Paused:        "#A8A29E",
		Title:         "#FFD700",
		Task:          "#F59E0B",
		Help:          "#A8A29E",
		GradientStart: "#B45309",
		GradientEnd:   "#FFD700",
	},
}

// PaletteFor returns the palette of a theme, falling back to dark.
func PaletteFor(theme domain.Theme) Palette {
	if p, ok := palettes[theme]; ok {
		return p
	}
	return palettes[domain.ThemeDark]
}

// PhaseColor returns the accent color for a phase.
func (p Palette) PhaseColor(phase domain.Phase) lipgloss.Color {
	if phase.IsBreak() {
		return p.Break
	}
	return p.Work
}

// PriorityColor returns the marker color for a task priority.
func (p Palette) PriorityColor(priority domain.Priority) lipgloss.Color {
	switch priority {
	case domain.PriorityRoyal:
		return p.Title
	case domain.PriorityHigh:
		return p.Work
	case domain.PriorityLow:
		return p.Help
	default:
		return p.Task
	}
}
