package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sahilm/fuzzy"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// TaskService handles task-related use cases. Lookups of unknown ids return
// a nil task and no error.
type TaskService struct {
	mu    sync.Mutex
	docs  *StorageService
	stats *StatisticsService
	clock ports.Clock
}

// NewTaskService creates a new task service.
func NewTaskService(docs *StorageService, stats *StatisticsService, clock ports.Clock) *TaskService {
	return &TaskService{docs: docs, stats: stats, clock: clock}
}

// AddTaskRequest contains the data needed to create a new task.
type AddTaskRequest struct {
	Title              string
	Description        string
	Priority           domain.Priority
	EstimatedPomodoros int
}

// AddTask creates a new task at the front of the list.
func (s *TaskService) AddTask(ctx context.Context, req AddTaskRequest) (*domain.Task, error) {
	if req.EstimatedPomodoros == 0 {
		req.EstimatedPomodoros = 1
	}
	task, err := domain.NewTask(req.Title, req.Description, req.Priority, req.EstimatedPomodoros, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	tasks = append([]*domain.Task{task}, tasks...)
	if err := s.docs.SaveTasks(ctx, tasks); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return task, nil
}

// ListTasksRequest contains filters for listing tasks.
type ListTasksRequest struct {
	Priority      *domain.Priority
	HideCompleted bool
}

// ListTasks retrieves tasks based on filters, newest first.
func (s *TaskService) ListTasks(ctx context.Context, req ListTasksRequest) ([]*domain.Task, error) {
	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if req.Priority != nil && t.Priority != *req.Priority {
			continue
		}
		if req.HideCompleted && t.IsCompleted {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// GetTask retrieves a single task by ID.
func (s *TaskService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	return findTask(tasks, id), nil
}

// EditTask applies a partial update.
func (s *TaskService) EditTask(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	now := s.clock.Now()
	return s.update(ctx, id, func(t *domain.Task) error { return t.Apply(patch, now) })
}

// ToggleComplete flips completion and snaps progress to the estimate or to zero.
func (s *TaskService) ToggleComplete(ctx context.Context, id string) (*domain.Task, error) {
	now := s.clock.Now()
	return s.update(ctx, id, func(t *domain.Task) error {
		t.ToggleComplete(now)
		return nil
	})
}

// UpdatePomodoroCount records one finished pomodoro on the task. Completed
// tasks are left unchanged.
func (s *TaskService) UpdatePomodoroCount(ctx context.Context, id string) (*domain.Task, error) {
	now := s.clock.Now()
	return s.update(ctx, id, func(t *domain.Task) error {
		if t.IncrementPomodoro(now) {
			log.Info().Str("task", t.ID).Str("title", t.Title).Msg("task completed")
		}
		return nil
	})
}

// DeleteTask removes a task. It reports whether a task was removed.
func (s *TaskService) DeleteTask(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return false, err
	}
	kept := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return false, nil
	}
	if err := s.docs.SaveTasks(ctx, kept); err != nil {
		return false, fmt.Errorf("failed to delete task: %w", err)
	}
	return true, nil
}

// GetTaskStats derives aggregate counts over every task.
func (s *TaskService) GetTaskStats(ctx context.Context) (domain.TaskStats, error) {
	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return domain.TaskStats{}, err
	}
	return domain.ComputeTaskStats(tasks), nil
}

// GetTasksByPriority buckets every task by priority.
func (s *TaskService) GetTasksByPriority(ctx context.Context) (map[domain.Priority][]*domain.Task, error) {
	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	return domain.GroupByPriority(tasks), nil
}

// FindTasks resolves a user query to tasks: an exact id, a unique id prefix,
// or otherwise fuzzy title matches ordered by score.
func (s *TaskService) FindTasks(ctx context.Context, query string) ([]*domain.Task, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return nil, err
	}

	if t := findTask(tasks, query); t != nil {
		return []*domain.Task{t}, nil
	}
	var prefixed []*domain.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, query) {
			prefixed = append(prefixed, t)
		}
	}
	if len(prefixed) == 1 {
		return prefixed, nil
	}

	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}
	matches := fuzzy.Find(query, titles)
	out := make([]*domain.Task, 0, len(matches))
	for _, m := range matches {
		out = append(out, tasks[m.Index])
	}
	return out, nil
}

// update loads, mutates and saves one task, keeping the completed-task
// counter in step with completion transitions.
func (s *TaskService) update(ctx context.Context, id string, fn func(*domain.Task) error) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	task := findTask(tasks, id)
	if task == nil {
		return nil, nil
	}

	wasCompleted := task.IsCompleted
	if err := fn(task); err != nil {
		return nil, err
	}
	if err := s.docs.SaveTasks(ctx, tasks); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}

	if s.stats != nil && wasCompleted != task.IsCompleted {
		delta := 1
		if wasCompleted {
			delta = -1
		}
		if err := s.stats.RecordTaskCompleted(ctx, delta); err != nil {
			return task, err
		}
	}
	return task, nil
}

func findTask(tasks []*domain.Task, id string) *domain.Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}
