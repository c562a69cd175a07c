package services

import (
	"context"
	"fmt"

	"github.com/xvierd/royal-pomodoro/internal/domain"
)

// StateService aggregates the other services into read models for
// dashboards and the MCP server.
type StateService struct {
	settings  *SettingsService
	stats     *StatisticsService
	tasks     *TaskService
	sessions  *SessionService
	analytics *AnalyticsService
}

// NewStateService creates a new state service.
func NewStateService(settings *SettingsService, stats *StatisticsService, tasks *TaskService, sessions *SessionService, analytics *AnalyticsService) *StateService {
	return &StateService{
		settings:  settings,
		stats:     stats,
		tasks:     tasks,
		sessions:  sessions,
		analytics: analytics,
	}
}

// GetCurrentState returns settings, statistics, task stats and the open
// session with its task.
func (s *StateService) GetCurrentState(ctx context.Context) (*domain.CurrentState, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	stats, err := s.stats.GetStatistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics: %w", err)
	}
	taskStats, err := s.tasks.GetTaskStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get task stats: %w", err)
	}

	state := &domain.CurrentState{
		Settings:          settings,
		Statistics:        *stats,
		TaskStats:         taskStats,
		OpenSession:       s.sessions.Current(),
		TodayMinutes:      stats.TodayMinutes(s.stats.clock.Now()),
		ProductivityScore: stats.ProductivityScore(taskStats.CompletionRate),
	}
	if state.OpenSession != nil && state.OpenSession.TaskID != nil {
		task, err := s.tasks.GetTask(ctx, *state.OpenSession.TaskID)
		if err != nil {
			return nil, fmt.Errorf("failed to get active task: %w", err)
		}
		state.ActiveTask = task
	}
	return state, nil
}

// ListTasks returns every task, newest first.
func (s *StateService) ListTasks(ctx context.Context) ([]*domain.Task, error) {
	return s.tasks.ListTasks(ctx, ListTasksRequest{})
}

// AddTask creates a task.
func (s *StateService) AddTask(ctx context.Context, title, description string, priority domain.Priority, estimated int) (*domain.Task, error) {
	return s.tasks.AddTask(ctx, AddTaskRequest{
		Title:              title,
		Description:        description,
		Priority:           priority,
		EstimatedPomodoros: estimated,
	})
}

// ToggleTask flips a task's completion flag.
func (s *StateService) ToggleTask(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.tasks.ToggleComplete(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("task not found: %s", id)
	}
	return task, nil
}

// GetChartData returns focus minutes bucketed for the period.
func (s *StateService) GetChartData(ctx context.Context, period domain.ChartPeriod) (*domain.ChartData, error) {
	return s.analytics.GetChartData(ctx, period)
}
