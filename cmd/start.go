package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/xvierd/royal-pomodoro/internal/adapters/tui"
	"github.com/xvierd/royal-pomodoro/internal/adapters/watcher"
	"github.com/xvierd/royal-pomodoro/internal/config"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/services"
)

var (
	startTask   string
	startPreset int
	startPlain  bool
	startInline bool
	startPick   bool
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start [task]",
	Short: "Start a focus session",
	Long: `Start the timer. A task can be given by id, id prefix or a fuzzy title match;
with --pick, or when nothing matches uniquely, a picker is shown.

When stdout is not a terminal the timer prints plain progress lines instead.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startTask, "task", "t", "", "Task id or title to work on")
	startCmd.Flags().IntVarP(&startPreset, "preset", "p", 0, "Duration preset 1-4 (25, 15, 50 or 5 minutes)")
	startCmd.Flags().BoolVar(&startPlain, "plain", false, "Print plain progress lines instead of the full-screen timer")
	startCmd.Flags().BoolVarP(&startInline, "inline", "i", false, "Compact inline timer (no fullscreen)")
	startCmd.Flags().BoolVar(&startPick, "pick", false, "Choose the task interactively")
	rootCmd.AddCommand(startCmd)
}

// runStart opens the timer. The start command begins the countdown right
// away; the bare root command opens it idle.
func runStart(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	autoStart := cmd == startCmd

	interactive := term.IsTerminal(os.Stdout.Fd()) && term.IsTerminal(os.Stdin.Fd())
	plain := startPlain || !interactive

	if startPreset < 0 || startPreset > len(domain.Presets) {
		return fmt.Errorf("invalid preset %d (want 1-%d)", startPreset, len(domain.Presets))
	}

	query := startTask
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	task, aborted, err := resolveStartTask(ctx, query, interactive && !plain)
	if err != nil || aborted {
		return err
	}

	if plain {
		return runPlainTimer(ctx, cmd.OutOrStdout(), task)
	}
	return runTUITimer(ctx, task, autoStart)
}

// resolveStartTask finds the task to work on. It returns nil when the user
// chose no task.
func resolveStartTask(ctx context.Context, query string, canPick bool) (*domain.Task, bool, error) {
	var candidates []*domain.Task
	if query != "" {
		matches, err := app.tasks.FindTasks(ctx, query)
		if err != nil {
			return nil, false, fmt.Errorf("failed to find task: %w", err)
		}
		for _, t := range matches {
			if !t.IsCompleted {
				candidates = append(candidates, t)
			}
		}
		switch {
		case len(candidates) == 0:
			return nil, false, fmt.Errorf("no open task matches %q", query)
		case len(candidates) == 1 && !startPick:
			return candidates[0], false, nil
		case !canPick:
			log.Warn().Str("query", query).Int("matches", len(candidates)).Msg("ambiguous task, using best match")
			return candidates[0], false, nil
		}
	} else {
		if !startPick || !canPick {
			return nil, false, nil
		}
		open, err := app.tasks.ListTasks(ctx, services.ListTasksRequest{HideCompleted: true})
		if err != nil {
			return nil, false, fmt.Errorf("failed to list tasks: %w", err)
		}
		candidates = open
	}

	settings, err := app.settings.GetSettings(ctx)
	if err != nil {
		return nil, false, err
	}
	result, err := tui.RunTaskPicker(candidates, settings.Theme)
	if err != nil {
		return nil, false, err
	}
	return result.Task, result.Aborted, nil
}

func prepareTimer(ctx context.Context, timer *services.Timer, task *domain.Task, autoStart bool) error {
	if task != nil {
		if err := timer.SetCurrentTask(task); err != nil {
			return fmt.Errorf("failed to set task: %w", err)
		}
	}
	if startPreset > 0 {
		if err := timer.SetDuration(ctx, domain.Presets[startPreset-1]); err != nil {
			return err
		}
	}
	if autoStart {
		if err := timer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}
	}
	return nil
}

// runPlainTimer counts down until the context is cancelled, then pauses the
// session. Without a terminal there is no key to start it, so it always starts.
func runPlainTimer(ctx context.Context, w io.Writer, task *domain.Task) error {
	observer := tui.NewPlainObserver(w)
	timer, notifier, ticker, err := newTimer(ctx, observer)
	if err != nil {
		return err
	}
	defer ticker.Stop()
	notifier.SetMirror(observer.ShowNotification)

	if err := prepareTimer(ctx, timer, task, true); err != nil {
		return err
	}

	<-ctx.Done()
	return timer.Pause(context.Background())
}

// runTUITimer shows the interactive timer and pauses the session on exit.
func runTUITimer(ctx context.Context, task *domain.Task, autoStart bool) error {
	if closeLog := redirectLogs(); closeLog != nil {
		defer closeLog()
	}

	program := tui.NewProgram()
	timer, notifier, ticker, err := newTimer(ctx, program)
	if err != nil {
		return err
	}
	defer ticker.Stop()
	notifier.SetMirror(program.ShowNotification)

	if app.config.TUI.WatchDB {
		w, err := watcher.New(watcher.DBFiles(app.dbPath), watcher.DefaultDebounce, func() {
			settings, err := app.settings.GetSettings(context.Background())
			if err != nil {
				log.Warn().Err(err).Msg("failed to reload settings")
				return
			}
			timer.LoadSettings(settings)
			program.Reload()
		})
		if err != nil {
			log.Warn().Err(err).Msg("database watcher disabled")
		} else if err := w.Start(); err != nil {
			log.Warn().Err(err).Msg("database watcher disabled")
			_ = w.Stop()
		} else {
			defer func() { _ = w.Stop() }()
		}
	}

	if err := prepareTimer(ctx, timer, task, autoStart); err != nil {
		return err
	}

	model := tui.NewModel(tui.Options{
		Engine:     timer,
		State:      app.state.GetCurrentState,
		CycleTheme: app.settings.CycleTheme,
		Theme:      timer.Settings().Theme,
		Refresh:    time.Duration(app.config.TUI.Refresh),
		Inline:     startInline,
	})
	runErr := program.Run(ctx, model)

	if err := timer.Pause(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to pause session on exit")
	}
	return runErr
}

// redirectLogs sends log output to the log file while the TUI owns the
// terminal. It returns a function restoring stderr logging.
func redirectLogs() func() {
	f, err := os.OpenFile(config.GetLogPath(app.config), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		log.Logger = log.Output(io.Discard)
		return nil
	}
	prev := log.Logger
	log.Logger = log.Output(f)
	return func() {
		log.Logger = prev
		_ = f.Close()
	}
}
