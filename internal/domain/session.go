package domain

import (
	"math"
	"time"
)

// SessionType identifies what a session measured. Only work sessions are logged.
type SessionType string

const (
	SessionTypeWork SessionType = "work"
)

// SessionStatus represents the lifecycle state of a logged session.
type SessionStatus string

const (
	SessionStatusActive    SessionStatus = "active"
	SessionStatusPaused    SessionStatus = "paused"
	SessionStatusCompleted SessionStatus = "completed"
)

// Session is one logged work interval.
type Session struct {
	ID           string        `json:"id" yaml:"id"`
	TaskID       *string       `json:"taskId,omitempty" yaml:"taskId,omitempty"`
	Type         SessionType   `json:"type" yaml:"type"`
	StartTime    time.Time     `json:"startTime" yaml:"startTime"`
	EndTime      *time.Time    `json:"endTime,omitempty" yaml:"endTime,omitempty"`
	Duration     int           `json:"duration" yaml:"duration"`
	WasCompleted bool          `json:"wasCompleted" yaml:"wasCompleted"`
	Status       SessionStatus `json:"status" yaml:"status"`
}

// NewSession opens an active work session starting at now.
func NewSession(taskID *string, now time.Time) *Session {
	return &Session{
		ID:        generateID(),
		TaskID:    copyString(taskID),
		Type:      SessionTypeWork,
		StartTime: now,
		Status:    SessionStatusActive,
	}
}

// IsOpen reports whether the session is active or paused.
func (s *Session) IsOpen() bool {
	return s.Status == SessionStatusActive || s.Status == SessionStatusPaused
}

// Pause moves an active session to paused. It reports whether anything changed.
func (s *Session) Pause() bool {
	if s.Status != SessionStatusActive {
		return false
	}
	s.Status = SessionStatusPaused
	return true
}

// Resume moves a paused session back to active and restarts its clock at now.
// Time elapsed before the pause is not carried into the final duration.
func (s *Session) Resume(now time.Time) bool {
	if s.Status != SessionStatusPaused {
		return false
	}
	s.Status = SessionStatusActive
	s.StartTime = now
	return true
}

// Complete finalizes an active session. The task reference is replaced by taskID.
func (s *Session) Complete(taskID *string, now time.Time) bool {
	if s.Status != SessionStatusActive {
		return false
	}
	end := now
	s.EndTime = &end
	s.Duration = RoundMinutes(end.Sub(s.StartTime))
	s.WasCompleted = true
	s.Status = SessionStatusCompleted
	s.TaskID = copyString(taskID)
	return true
}

// RoundMinutes converts d to whole minutes, rounding half away from zero.
func RoundMinutes(d time.Duration) int {
	return int(math.Round(d.Minutes()))
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
