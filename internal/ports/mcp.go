package ports

import (
	"context"

	"github.com/xvierd/royal-pomodoro/internal/domain"
)

// MCPHandler defines the interface for MCP server operations.
// This is a driving port (called by the application layer).
type MCPHandler interface {
	// Start begins serving MCP requests.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the server.
	Stop() error

	// IsRunning returns true if the server is active.
	IsRunning() bool
}

// MCPStateProvider provides state information to the MCP server.
// This is a driven port (implemented by services layer).
type MCPStateProvider interface {
	// GetCurrentState returns settings, statistics and task progress.
	GetCurrentState(ctx context.Context) (*domain.CurrentState, error)

	// ListTasks returns every task, newest first.
	ListTasks(ctx context.Context) ([]*domain.Task, error)

	// AddTask creates a task.
	AddTask(ctx context.Context, title, description string, priority domain.Priority, estimated int) (*domain.Task, error)

	// ToggleTask flips the completion of a task. It fails for unknown ids.
	ToggleTask(ctx context.Context, id string) (*domain.Task, error)

	// GetChartData returns focus totals bucketed for the given period.
	GetChartData(ctx context.Context, period domain.ChartPeriod) (*domain.ChartData, error)
}
