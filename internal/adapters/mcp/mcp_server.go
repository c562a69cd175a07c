// Package mcp provides the MCP (Model Context Protocol) server implementation.
package mcp

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

const dateTimeLayout = "2006-01-02T15:04:05"

// Server implements the MCP server using mark3labs/mcp-go.
type Server struct {
	server        *server.MCPServer
	stateProvider ports.MCPStateProvider
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewServer creates a new MCP server instance.
func NewServer(stateProvider ports.MCPStateProvider, version string) *Server {
	s := &Server{
		stateProvider: stateProvider,
	}

	s.server = server.NewMCPServer(
		"royal-pomodoro",
		version,
		server.WithLogging(),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool(
			"get_statistics",
			mcp.WithDescription("Get focus statistics, streaks, task progress, the open session and the current settings"),
		),
		s.handleGetStatistics,
	)

	s.server.AddTool(
		mcp.NewTool(
			"list_tasks",
			mcp.WithDescription("List tasks, newest first, optionally filtered by priority or completion"),
			mcp.WithString(
				"priority",
				mcp.Description("Only return tasks with this priority"),
				mcp.Enum("royal", "high", "medium", "low"),
			),
			mcp.WithString(
				"status",
				mcp.Description("Only return open or completed tasks"),
				mcp.Enum("open", "completed"),
			),
		),
		s.handleListTasks,
	)

	s.server.AddTool(
		mcp.NewTool(
			"add_task",
			mcp.WithDescription("Create a task"),
			mcp.WithString(
				"title",
				mcp.Required(),
				mcp.Description("The title of the task"),
			),
			mcp.WithString(
				"description",
				mcp.Description("Optional description of the task"),
			),
			mcp.WithString(
				"priority",
				mcp.Description("Task priority (default: medium)"),
				mcp.Enum("royal", "high", "medium", "low"),
			),
			mcp.WithNumber(
				"estimated_pomodoros",
				mcp.Description("Estimated number of pomodoros (default: 1)"),
			),
		),
		s.handleAddTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"toggle_task",
			mcp.WithDescription("Mark a task completed, or reopen a completed one"),
			mcp.WithString(
				"task_id",
				mcp.Required(),
				mcp.Description("The ID of the task to toggle"),
			),
		),
		s.handleToggleTask,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_chart_data",
			mcp.WithDescription("Get focus minutes per bucket for the last week, the current month or the current year"),
			mcp.WithString(
				"period",
				mcp.Description("Chart period (default: week)"),
				mcp.Enum("week", "month", "year"),
			),
		),
		s.handleGetChartData,
	)

	s.server.AddTool(
		mcp.NewTool(
			"get_productivity_score",
			mcp.WithDescription("Get the 0-100 productivity score built from streak, total focus and task completion"),
		),
		s.handleGetProductivityScore,
	)
}

// Start begins serving MCP requests via stdio.
func (s *Server) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	return server.ServeStdio(s.server)
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	return nil
}

// IsRunning returns true if the server is active.
func (s *Server) IsRunning() bool {
	if s.ctx == nil {
		return false
	}
	return s.ctx.Err() == nil
}

// Ensure Server implements ports.MCPHandler.
var _ ports.MCPHandler = (*Server)(nil)

func (s *Server) handleGetStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.stateProvider.GetCurrentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current state: %w", err)
	}

	stats := state.Statistics
	result := map[string]interface{}{
		"statistics": map[string]interface{}{
			"total_focus_minutes":   stats.TotalFocusMinutes,
			"total_focus_time":      domain.FormatFocusTime(stats.TotalFocusMinutes),
			"total_sessions":        stats.TotalSessions,
			"total_tasks_completed": stats.TotalTasksCompleted,
			"current_streak":        stats.CurrentStreak,
			"longest_streak":        stats.LongestStreak,
			"today_minutes":         state.TodayMinutes,
			"weekly_goal":           stats.WeeklyGoal,
			"monthly_goal":          stats.MonthlyGoal,
			"best_day":              stats.BestDay,
		},
		"tasks":              state.TaskStats,
		"productivity_score": state.ProductivityScore,
		"settings":           state.Settings,
		"open_session":       nil,
		"active_task":        nil,
	}

	if sess := state.OpenSession; sess != nil {
		sessionData := map[string]interface{}{
			"id":         sess.ID,
			"status":     string(sess.Status),
			"started_at": sess.StartTime.Format(dateTimeLayout),
		}
		if sess.TaskID != nil {
			sessionData["task_id"] = *sess.TaskID
		}
		result["open_session"] = sessionData
	}
	if state.ActiveTask != nil {
		result["active_task"] = taskData(state.ActiveTask)
	}

	return jsonResult(result)
}

func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	priority := request.GetString("priority", "")
	status := request.GetString("status", "")

	tasks, err := s.stateProvider.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	filtered := []map[string]interface{}{}
	for _, task := range tasks {
		if priority != "" && string(task.Priority) != priority {
			continue
		}
		if (status == "open" && task.IsCompleted) || (status == "completed" && !task.IsCompleted) {
			continue
		}
		filtered = append(filtered, taskData(task))
	}

	result := map[string]interface{}{
		"tasks":       filtered,
		"total_count": len(filtered),
	}
	if priority != "" {
		result["filter_priority"] = priority
	}
	if status != "" {
		result["filter_status"] = status
	}

	return jsonResult(result)
}

func (s *Server) handleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title is required: " + err.Error()), nil
	}

	priority, err := domain.ParsePriority(request.GetString("priority", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	estimated := int(request.GetFloat("estimated_pomodoros", 1))

	task, err := s.stateProvider.AddTask(ctx, title, request.GetString("description", ""), priority, estimated)
	if err != nil {
		return mcp.NewToolResultError("failed to add task: " + err.Error()), nil
	}

	return jsonResult(map[string]interface{}{
		"task":    taskData(task),
		"message": fmt.Sprintf("Task %q added", task.Title),
	})
}

func (s *Server) handleToggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID, err := request.RequireString("task_id")
	if err != nil {
		return mcp.NewToolResultError("task_id is required: " + err.Error()), nil
	}

	task, err := s.stateProvider.ToggleTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError("failed to toggle task: " + err.Error()), nil
	}

	message := fmt.Sprintf("Task %q reopened", task.Title)
	if task.IsCompleted {
		message = fmt.Sprintf("Task %q completed", task.Title)
	}
	return jsonResult(map[string]interface{}{
		"task":    taskData(task),
		"message": message,
	})
}

func (s *Server) handleGetChartData(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	period, err := domain.ParseChartPeriod(request.GetString("period", string(domain.ChartWeek)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := s.stateProvider.GetChartData(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("failed to get chart data: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"period":        data.Period,
		"labels":        data.Labels,
		"minutes":       data.Minutes,
		"hours":         data.Hours,
		"total_minutes": data.TotalMinutes(),
	})
}

func (s *Server) handleGetProductivityScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.stateProvider.GetCurrentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current state: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"score":           state.ProductivityScore,
		"current_streak":  state.Statistics.CurrentStreak,
		"total_minutes":   state.Statistics.TotalFocusMinutes,
		"completion_rate": state.TaskStats.CompletionRate,
	})
}

func taskData(task *domain.Task) map[string]interface{} {
	return map[string]interface{}{
		"id":                  task.ID,
		"title":               task.Title,
		"description":         task.Description,
		"priority":            string(task.Priority),
		"estimated_pomodoros": task.EstimatedPomodoros,
		"completed_pomodoros": task.CompletedPomodoros,
		"is_completed":        task.IsCompleted,
		"created_at":          task.CreatedAt.Format(dateTimeLayout),
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
