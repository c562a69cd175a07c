package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/xvierd/royal-pomodoro/internal/adapters/chart"
	"github.com/xvierd/royal-pomodoro/internal/adapters/tui"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

var (
	chartPeriod string
	chartTable  bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show focus statistics",
	Long:  `Display totals, streaks, today's focus time and the productivity score.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsShowCmd.RunE(cmd, args)
	},
}

var statsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show focus statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := app.state.GetCurrentState(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get current state: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"statistics":         state.Statistics,
				"task_stats":         state.TaskStats,
				"today_minutes":      state.TodayMinutes,
				"productivity_score": state.ProductivityScore,
			})
		}
		renderStats(cmd.OutOrStdout(), state)
		return nil
	},
}

var statsRecomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild statistics from the session log",
	Long: `Recompute totals, daily totals, the best day and streaks from completed
sessions, and recount completed tasks. Weekly and monthly goals are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := app.stats.RecomputeFromSessions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to recompute statistics: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), stats)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🔄 Rebuilt from %d sessions: %s focused, streak %d\n",
			stats.TotalSessions, domain.FormatFocusTime(stats.TotalFocusMinutes), stats.CurrentStreak)
		return nil
	},
}

var statsScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Show the productivity score",
	RunE: func(cmd *cobra.Command, args []string) error {
		score, err := app.stats.GetProductivityScore(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get productivity score: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]int{"score": score})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "👑 Productivity score: %d/100\n", score)
		return nil
	},
}

var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Chart focus hours",
	Long:  `Draw focus hours per day (week, month) or per month (year).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		period, err := domain.ParseChartPeriod(chartPeriod)
		if err != nil {
			return err
		}
		data, err := app.analytics.GetChartData(cmd.Context(), period)
		if err != nil {
			return fmt.Errorf("failed to get chart data: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), data)
		}
		if chartTable {
			fmt.Fprintln(cmd.OutOrStdout(), chart.Title(period))
			fmt.Fprint(cmd.OutOrStdout(), chart.Table(data))
			return nil
		}

		settings, err := app.settings.GetSettings(cmd.Context())
		if err != nil {
			return err
		}
		width := 60
		if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
			width = min(w-4, 100)
		}
		fmt.Fprintln(cmd.OutOrStdout(), chart.Render(data, chart.Options{
			Width:  width,
			Height: 12,
			Color:  tui.PaletteFor(settings.Theme).Work,
		}))
		return nil
	},
}

func init() {
	statsCmd.AddCommand(statsShowCmd, statsRecomputeCmd, statsScoreCmd)
	rootCmd.AddCommand(statsCmd)

	chartCmd.Flags().StringVarP(&chartPeriod, "period", "p", string(domain.ChartWeek), "Period: week, month or year")
	chartCmd.Flags().BoolVar(&chartTable, "table", false, "Print a plain table instead of bars")
	rootCmd.AddCommand(chartCmd)
}

func renderStats(w io.Writer, state *domain.CurrentState) {
	palette := tui.PaletteFor(state.Settings.Theme)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(palette.Title)
	dimStyle := lipgloss.NewStyle().Foreground(palette.Help)
	valueStyle := lipgloss.NewStyle().Bold(true).Foreground(palette.Work)

	s := state.Statistics
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-16s", label)), valueStyle.Render(value))
	}

	fmt.Fprintf(w, "  %s\n", titleStyle.Render("♛ Royal Pomodoro"))
	fmt.Fprintf(w, "  %s\n\n", dimStyle.Render(strings.Repeat("─", 40)))
	row("Today", domain.FormatFocusTime(state.TodayMinutes))
	row("Total focus", domain.FormatFocusTime(s.TotalFocusMinutes))
	row("Sessions", fmt.Sprintf("%d", s.TotalSessions))
	row("Streak", fmt.Sprintf("%d days (best %d)", s.CurrentStreak, s.LongestStreak))
	if s.BestDay.Minutes > 0 {
		row("Best day", fmt.Sprintf("%s (%s)", s.BestDay.Date, domain.FormatFocusTime(s.BestDay.Minutes)))
	}
	row("Tasks done", fmt.Sprintf("%d/%d", state.TaskStats.Completed, state.TaskStats.Total))
	row("Score", fmt.Sprintf("%d/100", state.ProductivityScore))
	if state.ActiveTask != nil {
		row("Working on", state.ActiveTask.Title)
	}
	fmt.Fprintln(w)
}
