package domain

import "time"

// Phase is the purpose of the current countdown.
type Phase string

const (
	PhaseWork      Phase = "work"
	PhaseBreak     Phase = "break"
	PhaseLongBreak Phase = "long_break"
)

// LongBreakMinutes is the fixed long-break length. Settings do not change it.
const LongBreakMinutes = 15

// Presets are the quick duration overrides, in minutes, bound to keys 1-4.
var Presets = []int{25, 15, 50, 5}

// NoActiveTaskLabel is shown when no task is attached to the timer.
const NoActiveTaskLabel = "No active task"

// IsBreak reports whether p is a break phase.
func (p Phase) IsBreak() bool {
	return p == PhaseBreak || p == PhaseLongBreak
}

// GetPhaseLabel returns a human-readable label for the phase.
func GetPhaseLabel(p Phase) string {
	switch p {
	case PhaseWork:
		return "Focus"
	case PhaseBreak:
		return "Break"
	case PhaseLongBreak:
		return "Long Break"
	default:
		return "Unknown"
	}
}

// SessionInfo describes the phase just entered.
type SessionInfo struct {
	Phase     Phase
	Ordinal   int
	TaskLabel string
}

// TimerState is a point-in-time view of the timer.
type TimerState struct {
	Phase          Phase
	Running        bool
	TimeLeft       time.Duration
	TotalTime      time.Duration
	SessionCount   int
	SessionsPerSet int
	Task           *Task
	OpenSession    *Session
}

// Progress returns the elapsed fraction of the current phase in [0, 1].
func (s TimerState) Progress() float64 {
	if s.TotalTime <= 0 {
		return 0
	}
	p := 1 - float64(s.TimeLeft)/float64(s.TotalTime)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// CurrentState is the aggregate shown by dashboards.
type CurrentState struct {
	Settings          Settings
	Statistics        Statistics
	TaskStats         TaskStats
	OpenSession       *Session
	ActiveTask        *Task
	TodayMinutes      int
	ProductivityScore int
}
