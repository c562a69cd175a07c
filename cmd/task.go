package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/x/term"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/services"
)

var (
	taskDescription string
	taskPriority    string
	taskEstimate    int
	taskTitle       string
	taskHideDone    bool
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Add, list, edit and complete the tasks that focus sessions are credited to.`,
}

var taskAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new task",
	Long:  `Add a new task. Without a title an interactive form is shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := services.AddTaskRequest{
			Title:              strings.Join(args, " "),
			Description:        taskDescription,
			EstimatedPomodoros: taskEstimate,
		}
		if taskPriority != "" {
			p, err := domain.ParsePriority(taskPriority)
			if err != nil {
				return err
			}
			req.Priority = p
		}

		if strings.TrimSpace(req.Title) == "" {
			if !term.IsTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("a title is required when not running in a terminal")
			}
			filled, err := runTaskForm(req)
			if err != nil {
				return err
			}
			req = filled
		}

		task, err := app.tasks.AddTask(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), task)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Task added: %s (ID: %s)\n", task.Title, shortID(task.ID))
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long:  `List tasks, newest first. Filter by priority or hide completed tasks.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		req := services.ListTasksRequest{HideCompleted: taskHideDone}
		if taskPriority != "" {
			p, err := domain.ParsePriority(taskPriority)
			if err != nil {
				return err
			}
			req.Priority = &p
		}

		tasks, err := app.tasks.ListTasks(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"tasks": tasks,
				"count": len(tasks),
			})
		}
		printTasks(cmd.OutOrStdout(), tasks)
		return nil
	},
}

var taskEditCmd = &cobra.Command{
	Use:   "edit <task>",
	Short: "Edit a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		var patch domain.TaskPatch
		if flags.Changed("title") {
			patch.Title = &taskTitle
		}
		if flags.Changed("desc") {
			patch.Description = &taskDescription
		}
		if flags.Changed("priority") {
			p, err := domain.ParsePriority(taskPriority)
			if err != nil {
				return err
			}
			patch.Priority = &p
		}
		if flags.Changed("estimate") {
			patch.EstimatedPomodoros = &taskEstimate
		}

		target, err := resolveTask(cmd, args[0])
		if err != nil {
			return err
		}
		task, err := app.tasks.EditTask(cmd.Context(), target.ID, patch)
		if err != nil {
			return fmt.Errorf("failed to edit task: %w", err)
		}
		return reportTask(cmd, task, "✏️  Task updated")
	},
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <task>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTask(cmd, args[0])
		if err != nil {
			return err
		}
		if _, err := app.tasks.DeleteTask(cmd.Context(), target.ID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"deleted": target.ID})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "🗑️  Task deleted: %s\n", target.Title)
		return nil
	},
}

var taskToggleCmd = &cobra.Command{
	Use:   "toggle <task>",
	Short: "Flip a task between done and not done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTask(cmd, args[0])
		if err != nil {
			return err
		}
		task, err := app.tasks.ToggleComplete(cmd.Context(), target.ID)
		if err != nil {
			return fmt.Errorf("failed to toggle task: %w", err)
		}
		label := "↩️  Task reopened"
		if task != nil && task.IsCompleted {
			label = "✅ Task completed"
		}
		return reportTask(cmd, task, label)
	},
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <task>",
	Short: "Mark a task as done",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTask(cmd, args[0])
		if err != nil {
			return err
		}
		task := target
		if !target.IsCompleted {
			task, err = app.tasks.ToggleComplete(cmd.Context(), target.ID)
			if err != nil {
				return fmt.Errorf("failed to complete task: %w", err)
			}
		}
		return reportTask(cmd, task, "✅ Task completed")
	},
}

var taskPomodoroCmd = &cobra.Command{
	Use:   "pomodoro <task>",
	Short: "Credit one finished pomodoro to a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := resolveTask(cmd, args[0])
		if err != nil {
			return err
		}
		task, err := app.tasks.UpdatePomodoroCount(cmd.Context(), target.ID)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return reportTask(cmd, task, "🍅 Pomodoro recorded")
	},
}

var taskStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := app.tasks.GetTaskStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get task stats: %w", err)
		}
		groups, err := app.tasks.GetTasksByPriority(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to group tasks: %w", err)
		}

		if jsonOutput {
			byPriority := make(map[domain.Priority]int, len(groups))
			for p, ts := range groups {
				byPriority[p] = len(ts)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
				"stats":       stats,
				"by_priority": byPriority,
			})
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "📋 Tasks: %d total, %d done, %d in progress\n", stats.Total, stats.Completed, stats.InProgress)
		fmt.Fprintf(w, "   Pomodoros: %d/%d\n", stats.CompletedPomodoros, stats.TotalPomodoros)
		fmt.Fprintf(w, "   Completion: %.0f%% of tasks, %.0f%% of pomodoros\n", stats.CompletionRate, stats.PomodoroRate)
		for _, p := range domain.Priorities {
			fmt.Fprintf(w, "   %-7s %d\n", p, len(groups[p]))
		}
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskDescription, "desc", "d", "", "Task description")
	taskAddCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "Priority: royal, high, medium, low (default medium)")
	taskAddCmd.Flags().IntVarP(&taskEstimate, "estimate", "e", 1, "Estimated pomodoros")

	taskListCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "Only tasks with this priority")
	taskListCmd.Flags().BoolVar(&taskHideDone, "hide-done", false, "Hide completed tasks")

	taskEditCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	taskEditCmd.Flags().StringVarP(&taskDescription, "desc", "d", "", "New description")
	taskEditCmd.Flags().StringVarP(&taskPriority, "priority", "p", "", "New priority")
	taskEditCmd.Flags().IntVarP(&taskEstimate, "estimate", "e", 1, "New estimate")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskEditCmd, taskDeleteCmd,
		taskToggleCmd, taskDoneCmd, taskPomodoroCmd, taskStatsCmd)
	rootCmd.AddCommand(taskCmd)
}

// runTaskForm asks for the task fields interactively.
func runTaskForm(req services.AddTaskRequest) (services.AddTaskRequest, error) {
	priority := string(domain.PriorityMedium)
	if req.Priority != "" {
		priority = string(req.Priority)
	}
	estimate := strconv.Itoa(max(req.EstimatedPomodoros, 1))

	options := make([]huh.Option[string], len(domain.Priorities))
	for i, p := range domain.Priorities {
		options[i] = huh.NewOption(string(p), string(p))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&req.Title).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return domain.ErrEmptyTaskTitle
				}
				return nil
			}),
			huh.NewInput().Title("Description").Value(&req.Description),
			huh.NewSelect[string]().Title("Priority").Options(options...).Value(&priority),
			huh.NewInput().Title("Estimated pomodoros").Value(&estimate).Validate(validateEstimate),
		),
	)
	if err := form.Run(); err != nil {
		return req, fmt.Errorf("task form cancelled: %w", err)
	}

	req.Priority = domain.Priority(priority)
	req.EstimatedPomodoros, _ = strconv.Atoi(strings.TrimSpace(estimate))
	return req, nil
}

func validateEstimate(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return fmt.Errorf("enter a whole number of at least 1")
	}
	return nil
}

// resolveTask finds exactly one task for a user query.
func resolveTask(cmd *cobra.Command, query string) (*domain.Task, error) {
	matches, err := app.tasks.FindTasks(cmd.Context(), query)
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("task not found: %s", query)
	case 1:
		return matches[0], nil
	}
	titles := make([]string, 0, len(matches))
	for _, t := range matches {
		titles = append(titles, fmt.Sprintf("%s (%s)", t.Title, shortID(t.ID)))
	}
	return nil, fmt.Errorf("%q matches %d tasks: %s", query, len(matches), strings.Join(titles, ", "))
}

func reportTask(cmd *cobra.Command, task *domain.Task, label string) error {
	if task == nil {
		return fmt.Errorf("task no longer exists")
	}
	if jsonOutput {
		return writeJSON(cmd.OutOrStdout(), task)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s (%d/%d)\n", label, task.Title, task.CompletedPomodoros, task.EstimatedPomodoros)
	return nil
}

func printTasks(w io.Writer, tasks []*domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found.")
		return
	}
	fmt.Fprintf(w, "📋 Tasks (%d):\n\n", len(tasks))
	for _, t := range tasks {
		fmt.Fprintf(w, "%s %-32s %-7s %d/%d  (ID: %s)\n",
			taskIcon(t), t.Title, t.Priority, t.CompletedPomodoros, t.EstimatedPomodoros, shortID(t.ID))
	}
}

func taskIcon(t *domain.Task) string {
	switch {
	case t.IsCompleted:
		return "✅"
	case t.CompletedPomodoros > 0:
		return "▶️"
	case t.Priority == domain.PriorityRoyal:
		return "♛"
	default:
		return "⏳"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
