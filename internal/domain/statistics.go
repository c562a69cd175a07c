package domain

import (
	"math"
	"sort"
	"time"
)

// DateLayout is the layout of the calendar-date keys used in daily totals.
const DateLayout = "2006-01-02"

// DateKey returns the calendar-date key of t in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// StreakMode selects how often the streak is re-evaluated.
type StreakMode string

const (
	// StreakModeDaily lets the streak grow at most once per calendar day.
	StreakModeDaily StreakMode = "daily"
	// StreakModeLegacy re-evaluates the streak on every completed session,
	// so several sessions on one day can each extend it.
	StreakModeLegacy StreakMode = "legacy"
)

// BestDay is the calendar day with the most focus minutes.
type BestDay struct {
	Date    string `json:"date" yaml:"date"`
	Minutes int    `json:"minutes" yaml:"minutes"`
}

// Statistics are the running aggregates over completed work sessions.
type Statistics struct {
	TotalFocusMinutes   int            `json:"totalFocusMinutes" yaml:"totalFocusMinutes"`
	TotalSessions       int            `json:"totalSessions" yaml:"totalSessions"`
	TotalTasksCompleted int            `json:"totalTasksCompleted" yaml:"totalTasksCompleted"`
	CurrentStreak       int            `json:"currentStreak" yaml:"currentStreak"`
	LongestStreak       int            `json:"longestStreak" yaml:"longestStreak"`
	DailyTotals         map[string]int `json:"dailyTotals" yaml:"dailyTotals"`
	WeeklyGoal          int            `json:"weeklyGoal" yaml:"weeklyGoal"`
	MonthlyGoal         int            `json:"monthlyGoal" yaml:"monthlyGoal"`
	BestDay             BestDay        `json:"bestDay" yaml:"bestDay"`
	StartDate           time.Time      `json:"startDate" yaml:"startDate"`
	StreakUpdatedOn     string         `json:"streakUpdatedOn,omitempty" yaml:"streakUpdatedOn,omitempty"`
}

// DefaultStatistics returns empty statistics starting at now.
func DefaultStatistics(now time.Time) Statistics {
	today := DateKey(now)
	return Statistics{
		DailyTotals: map[string]int{today: 0},
		WeeklyGoal:  20,
		MonthlyGoal: 80,
		BestDay:     BestDay{Date: today},
		StartDate:   now,
	}
}

// Record folds one completed session of the given length into the aggregates.
func (s *Statistics) Record(minutes int, now time.Time, mode StreakMode) {
	if s.DailyTotals == nil {
		s.DailyTotals = make(map[string]int)
	}
	today := DateKey(now)

	s.TotalFocusMinutes += minutes
	s.TotalSessions++
	s.DailyTotals[today] += minutes
	if s.DailyTotals[today] > s.BestDay.Minutes {
		s.BestDay = BestDay{Date: today, Minutes: s.DailyTotals[today]}
	}

	s.updateStreak(now, mode)
}

// updateStreak extends, starts or breaks the streak based on yesterday's and
// today's totals. In daily mode a streak already evaluated today is left alone.
func (s *Statistics) updateStreak(now time.Time, mode StreakMode) {
	today := DateKey(now)
	if mode != StreakModeLegacy && s.StreakUpdatedOn == today && s.CurrentStreak > 0 {
		return
	}
	yesterday := DateKey(now.AddDate(0, 0, -1))

	switch {
	case s.DailyTotals[yesterday] > 0:
		s.CurrentStreak++
	case s.DailyTotals[today] > 0 && s.CurrentStreak == 0:
		s.CurrentStreak = 1
	default:
		if s.CurrentStreak > s.LongestStreak {
			s.LongestStreak = s.CurrentStreak
		}
		s.CurrentStreak = 0
	}
	s.StreakUpdatedOn = today
}

// TodayMinutes returns the focus minutes logged on now's calendar day.
func (s *Statistics) TodayMinutes(now time.Time) int {
	return s.DailyTotals[DateKey(now)]
}

// ProductivityScore weighs streak (30), total focus (30) and task completion
// rate (40) into a 0-100 score. completionRate is a percentage.
func (s *Statistics) ProductivityScore(completionRate float64) int {
	streak := math.Min(float64(s.CurrentStreak)/30, 1) * 30
	focus := math.Min(float64(s.TotalFocusMinutes)/3000, 1) * 30
	tasks := completionRate / 100 * 40
	return int(math.Round(streak + focus + tasks))
}

// Rebuild replaces the session-derived aggregates with values computed from
// completed work sessions. Goals, the task counter and the start date are kept,
// except that the start date moves back to the earliest session.
func (s *Statistics) Rebuild(sessions []*Session, now time.Time) {
	loc := now.Location()
	s.TotalFocusMinutes = 0
	s.TotalSessions = 0
	s.DailyTotals = map[string]int{DateKey(now): 0}
	s.BestDay = BestDay{Date: DateKey(now)}

	for _, sess := range sessions {
		if sess.Type != SessionTypeWork || sess.Status != SessionStatusCompleted {
			continue
		}
		day := DateKey(sess.StartTime.In(loc))
		s.TotalFocusMinutes += sess.Duration
		s.TotalSessions++
		s.DailyTotals[day] += sess.Duration
		if s.StartDate.IsZero() || sess.StartTime.Before(s.StartDate) {
			s.StartDate = sess.StartTime
		}
	}

	days := make([]string, 0, len(s.DailyTotals))
	for day, minutes := range s.DailyTotals {
		if minutes > 0 {
			days = append(days, day)
		}
	}
	sort.Strings(days)
	for _, day := range days {
		if s.DailyTotals[day] > s.BestDay.Minutes {
			s.BestDay = BestDay{Date: day, Minutes: s.DailyTotals[day]}
		}
	}

	longest, run := 0, 0
	var prev time.Time
	for i, day := range days {
		d, _ := time.ParseInLocation(DateLayout, day, loc)
		if i > 0 && d.Equal(prev.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
		prev = d
	}

	s.LongestStreak = longest
	s.CurrentStreak = 0
	s.StreakUpdatedOn = ""
	if len(days) > 0 {
		last := days[len(days)-1]
		if last == DateKey(now) || last == DateKey(now.AddDate(0, 0, -1)) {
			s.CurrentStreak = run
			s.StreakUpdatedOn = last
		}
	}
}
