package domain

import "errors"

// Common domain errors.
var (
	ErrEmptyTaskTitle       = errors.New("task title cannot be empty")
	ErrInvalidPriority      = errors.New("invalid task priority")
	ErrInvalidEstimate      = errors.New("estimated pomodoros must be at least 1")
	ErrTaskCompleted        = errors.New("task is already completed")
	ErrInvalidDuration      = errors.New("invalid duration")
	ErrInvalidSessionsCount = errors.New("sessions per set must be at least 1")
	ErrInvalidTheme         = errors.New("unknown theme")
	ErrSessionAlreadyActive = errors.New("session already active")
)
