// Package chart renders focus analytics as terminal bar charts.
package chart

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

const (
	minWidth  = 20
	minHeight = 6
)

var mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// Options control the rendering.
type Options struct {
	Width  int
	Height int
	Color  lipgloss.Color
}

// Render draws the series as bars of hours with a title and a total line.
func Render(data *domain.ChartData, opts Options) string {
	if data == nil || len(data.Minutes) == 0 {
		return mutedStyle.Render("No data for this period")
	}
	if opts.Width < minWidth {
		opts.Width = minWidth
	}
	if opts.Height < minHeight {
		opts.Height = minHeight
	}

	style := lipgloss.NewStyle().Foreground(opts.Color)
	bars := make([]barchart.BarData, len(data.Minutes))
	for i, minutes := range data.Minutes {
		bars[i] = barchart.BarData{
			Label: data.Labels[i],
			Values: []barchart.BarValue{{
				Name:  data.Labels[i],
				Value: domain.MinutesToHours(minutes),
				Style: style,
			}},
		}
	}

	bc := barchart.New(opts.Width, opts.Height)
	bc.PushAll(bars)
	bc.Draw()

	title := lipgloss.NewStyle().Bold(true).Foreground(opts.Color).Render(Title(data.Period))
	total := mutedStyle.Render(fmt.Sprintf("Total: %s  Peak: %s",
		domain.FormatFocusTime(data.TotalMinutes()), peakLabel(data)))

	return lipgloss.JoinVertical(lipgloss.Left, title, "", bc.View(), "", total)
}

// Title names the chart for a period.
func Title(period domain.ChartPeriod) string {
	switch period {
	case domain.ChartWeek:
		return "Focus this week"
	case domain.ChartMonth:
		return "Focus this month"
	case domain.ChartYear:
		return "Focus this year"
	}
	return "Focus"
}

// Table renders the series as aligned "label  hours" rows, skipping empty labels.
func Table(data *domain.ChartData) string {
	var b strings.Builder
	for i, minutes := range data.Minutes {
		label := data.Labels[i]
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		fmt.Fprintf(&b, "%-8s %5.1fh\n", label, domain.MinutesToHours(minutes))
	}
	return b.String()
}

func peakLabel(data *domain.ChartData) string {
	best := -1
	for i, m := range data.Minutes {
		if m > 0 && (best < 0 || m > data.Minutes[best]) {
			best = i
		}
	}
	if best < 0 {
		return "-"
	}
	label := data.Labels[best]
	if label == "" {
		label = fmt.Sprintf("#%d", best+1)
	}
	return fmt.Sprintf("%s (%s)", label, domain.FormatFocusTime(data.Minutes[best]))
}
