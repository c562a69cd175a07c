// Package domain contains the core entities of the Pomodoro timer:
// settings, tasks, work sessions and the statistics derived from them.
// Entities carry no knowledge of storage or presentation.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Priority ranks a task. Royal is the highest.
type Priority string

const (
	PriorityRoyal  Priority = "royal"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists every priority from highest to lowest.
var Priorities = []Priority{PriorityRoyal, PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority validates a priority string. An empty string yields medium.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Priorities {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// Task is a unit of work measured in pomodoros.
type Task struct {
	ID                 string    `json:"id" yaml:"id"`
	Title              string    `json:"title" yaml:"title"`
	Description        string    `json:"description" yaml:"description"`
	Priority           Priority  `json:"priority" yaml:"priority"`
	EstimatedPomodoros int       `json:"estimatedPomodoros" yaml:"estimatedPomodoros"`
	CompletedPomodoros int       `json:"completedPomodoros" yaml:"completedPomodoros"`
	IsCompleted        bool      `json:"isCompleted" yaml:"isCompleted"`
	CreatedAt          time.Time `json:"createdAt" yaml:"createdAt"`
	LastUpdated        time.Time `json:"lastUpdated" yaml:"lastUpdated"`
}

// NewTask creates a task with no progress.
func NewTask(title, description string, priority Priority, estimated int, now time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTaskTitle
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if _, err := ParsePriority(string(priority)); err != nil {
		return nil, err
	}
	if estimated < 1 {
		return nil, ErrInvalidEstimate
	}

	return &Task{
		ID:                 generateID(),
		Title:              title,
		Description:        strings.TrimSpace(description),
		Priority:           priority,
		EstimatedPomodoros: estimated,
		CreatedAt:          now,
		LastUpdated:        now,
	}, nil
}

// ToggleComplete flips the completion flag. Completing snaps progress to the
// estimate; un-completing zeroes it, so partial progress is not restored.
func (t *Task) ToggleComplete(now time.Time) {
	t.IsCompleted = !t.IsCompleted
	if t.IsCompleted {
		t.CompletedPomodoros = t.EstimatedPomodoros
	} else {
		t.CompletedPomodoros = 0
	}
	t.LastUpdated = now
}

// IncrementPomodoro records one finished pomodoro, capped at the estimate.
// It reports whether the increment completed the task.
func (t *Task) IncrementPomodoro(now time.Time) bool {
	if t.IsCompleted {
		return false
	}
	if t.CompletedPomodoros < t.EstimatedPomodoros {
		t.CompletedPomodoros++
	}
	t.LastUpdated = now
	if t.CompletedPomodoros >= t.EstimatedPomodoros {
		t.IsCompleted = true
		return true
	}
	return false
}

// Remaining returns the number of pomodoros left on the estimate.
func (t *Task) Remaining() int {
	return t.EstimatedPomodoros - t.CompletedPomodoros
}

// TaskPatch holds the editable fields of a task. Nil fields are left unchanged.
type TaskPatch struct {
	Title              *string
	Description        *string
	Priority           *Priority
	EstimatedPomodoros *int
}

// Apply validates and applies the patch. A lowered estimate clamps progress,
// and completion is re-derived from the new estimate.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return ErrEmptyTaskTitle
		}
		t.Title = title
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		prio, err := ParsePriority(string(*p.Priority))
		if err != nil {
			return err
		}
		t.Priority = prio
	}
	if p.EstimatedPomodoros != nil {
		if *p.EstimatedPomodoros < 1 {
			return ErrInvalidEstimate
		}
		t.EstimatedPomodoros = *p.EstimatedPomodoros
		if t.IsCompleted {
			t.CompletedPomodoros = t.EstimatedPomodoros
		} else if t.CompletedPomodoros >= t.EstimatedPomodoros {
			t.CompletedPomodoros = t.EstimatedPomodoros
			t.IsCompleted = true
		}
	}
	t.LastUpdated = now
	return nil
}

// TaskStats aggregates progress over a set of tasks.
type TaskStats struct {
	Total              int     `json:"total"`
	Completed          int     `json:"completed"`
	InProgress         int     `json:"inProgress"`
	TotalPomodoros     int     `json:"totalPomodoros"`
	CompletedPomodoros int     `json:"completedPomodoros"`
	CompletionRate     float64 `json:"completionRate"`
	PomodoroRate       float64 `json:"pomodoroRate"`
}

// ComputeTaskStats derives aggregate counts. Rates are percentages and are 0
// when their denominator is 0.
func ComputeTaskStats(tasks []*Task) TaskStats {
	var s TaskStats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.IsCompleted {
			s.Completed++
		}
		s.TotalPomodoros += t.EstimatedPomodoros
		s.CompletedPomodoros += t.CompletedPomodoros
	}
	s.InProgress = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total) * 100
	}
	if s.TotalPomodoros > 0 {
		s.PomodoroRate = float64(s.CompletedPomodoros) / float64(s.TotalPomodoros) * 100
	}
	return s
}

// GroupByPriority buckets tasks by priority, keeping their order.
// Every known priority has an entry, possibly empty.
func GroupByPriority(tasks []*Task) map[Priority][]*Task {
	groups := make(map[Priority][]*Task, len(Priorities))
	for _, p := range Priorities {
		groups[p] = []*Task{}
	}
	for _, t := range tasks {
		groups[t.Priority] = append(groups[t.Priority], t)
	}
	return groups
}
