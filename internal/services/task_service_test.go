package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

func TestTaskService_AddTask(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	t.Run("add valid task", func(t *testing.T) {
		task, err := app.tasks.AddTask(ctx, AddTaskRequest{
			Title:              "  Test Task ",
			Description:        "A test task",
			Priority:           domain.PriorityHigh,
			EstimatedPomodoros: 3,
		})
		require.NoError(t, err)
		assert.Equal(t, "Test Task", task.Title)
		assert.Equal(t, domain.PriorityHigh, task.Priority)
		assert.Equal(t, 3, task.EstimatedPomodoros)
		assert.Equal(t, testNow, task.CreatedAt)
	})

	t.Run("defaults", func(t *testing.T) {
		task, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "Defaults"})
		require.NoError(t, err)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
		assert.Equal(t, 1, task.EstimatedPomodoros)
	})

	t.Run("newest first", func(t *testing.T) {
		tasks, err := app.tasks.ListTasks(ctx, ListTasksRequest{})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "Defaults", tasks[0].Title)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "   "})
		assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)

		_, err = app.tasks.AddTask(ctx, AddTaskRequest{Title: "x", Priority: "urgent"})
		assert.ErrorIs(t, err, domain.ErrInvalidPriority)

		_, err = app.tasks.AddTask(ctx, AddTaskRequest{Title: "x", EstimatedPomodoros: -2})
		assert.ErrorIs(t, err, domain.ErrInvalidEstimate)
	})
}

func TestTaskService_ListTasks(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	royal, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "Royal", Priority: domain.PriorityRoyal})
	require.NoError(t, err)
	_, err = app.tasks.AddTask(ctx, AddTaskRequest{Title: "Low", Priority: domain.PriorityLow})
	require.NoError(t, err)
	_, err = app.tasks.ToggleComplete(ctx, royal.ID)
	require.NoError(t, err)

	prio := domain.PriorityRoyal
	tests := []struct {
		name string
		req  ListTasksRequest
		want []string
	}{
		{name: "all", req: ListTasksRequest{}, want: []string{"Low", "Royal"}},
		{name: "by priority", req: ListTasksRequest{Priority: &prio}, want: []string{"Royal"}},
		{name: "hide completed", req: ListTasksRequest{HideCompleted: true}, want: []string{"Low"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := app.tasks.ListTasks(ctx, tt.req)
			require.NoError(t, err)
			titles := make([]string, len(tasks))
			for i, task := range tasks {
				titles[i] = task.Title
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestTaskService_ToggleCompleteTracksCounter(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	task, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "Toggle", EstimatedPomodoros: 4})
	require.NoError(t, err)

	done, err := app.tasks.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	assert.Equal(t, 4, done.CompletedPomodoros)

	stats, err := app.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTasksCompleted)

	undone, err := app.tasks.ToggleComplete(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, undone.IsCompleted)
	assert.Zero(t, undone.CompletedPomodoros)

	stats, err = app.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalTasksCompleted)

	missing, err := app.tasks.ToggleComplete(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTaskService_UpdatePomodoroCount(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	task, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "Count", EstimatedPomodoros: 2})
	require.NoError(t, err)

	got, err := app.tasks.UpdatePomodoroCount(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CompletedPomodoros)
	assert.False(t, got.IsCompleted)

	got, err = app.tasks.UpdatePomodoroCount(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CompletedPomodoros)
	assert.True(t, got.IsCompleted)

	got, err = app.tasks.UpdatePomodoroCount(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CompletedPomodoros, "completed tasks are not incremented")
}

func TestTaskService_EditTask(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	task, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "Edit", EstimatedPomodoros: 4})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = app.tasks.UpdatePomodoroCount(ctx, task.ID)
		require.NoError(t, err)
	}

	title := "Edited"
	estimate := 2
	got, err := app.tasks.EditTask(ctx, task.ID, domain.TaskPatch{Title: &title, EstimatedPomodoros: &estimate})
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Title)
	assert.Equal(t, 2, got.CompletedPomodoros)
	assert.True(t, got.IsCompleted)

	empty := ""
	_, err = app.tasks.EditTask(ctx, task.ID, domain.TaskPatch{Title: &empty})
	assert.ErrorIs(t, err, domain.ErrEmptyTaskTitle)
}

func TestTaskService_DeleteTask(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	task, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "Delete me"})
	require.NoError(t, err)

	removed, err := app.tasks.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = app.tasks.DeleteTask(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	got, err := app.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTaskService_GetTaskStats(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	a, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "A", EstimatedPomodoros: 2})
	require.NoError(t, err)
	b, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "B", EstimatedPomodoros: 2})
	require.NoError(t, err)
	_, err = app.tasks.AddTask(ctx, AddTaskRequest{Title: "C", EstimatedPomodoros: 4})
	require.NoError(t, err)

	_, err = app.tasks.ToggleComplete(ctx, a.ID)
	require.NoError(t, err)
	_, err = app.tasks.UpdatePomodoroCount(ctx, b.ID)
	require.NoError(t, err)

	stats, err := app.tasks.GetTaskStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.InProgress)
	assert.Equal(t, 8, stats.TotalPomodoros)
	assert.Equal(t, 3, stats.CompletedPomodoros)

	groups, err := app.tasks.GetTasksByPriority(ctx)
	require.NoError(t, err)
	assert.Len(t, groups[domain.PriorityMedium], 3)
}

func TestTaskService_FindTasks(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	report, err := app.tasks.AddTask(ctx, AddTaskRequest{Title: "Write quarterly report"})
	require.NoError(t, err)
	_, err = app.tasks.AddTask(ctx, AddTaskRequest{Title: "Review pull requests"})
	require.NoError(t, err)

	t.Run("exact id", func(t *testing.T) {
		got, err := app.tasks.FindTasks(ctx, report.ID)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, report.ID, got[0].ID)
	})

	t.Run("fuzzy title", func(t *testing.T) {
		got, err := app.tasks.FindTasks(ctx, "qrtrly")
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.Equal(t, report.ID, got[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		got, err := app.tasks.FindTasks(ctx, "zzzz")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("blank", func(t *testing.T) {
		got, err := app.tasks.FindTasks(ctx, "  ")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
