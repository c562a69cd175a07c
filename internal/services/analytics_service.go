package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// AnalyticsService answers the chart queries. Every query sums the minutes of
// work sessions by the calendar date of their start time.
type AnalyticsService struct {
	docs  *StorageService
	clock ports.Clock
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(docs *StorageService, clock ports.Clock) *AnalyticsService {
	return &AnalyticsService{docs: docs, clock: clock}
}

// GetChartData dispatches on the period.
func (s *AnalyticsService) GetChartData(ctx context.Context, period domain.ChartPeriod) (*domain.ChartData, error) {
	switch period {
	case domain.ChartWeek:
		return s.GetWeeklyData(ctx)
	case domain.ChartMonth:
		return s.GetMonthlyData(ctx)
	case domain.ChartYear:
		return s.GetYearlyData(ctx)
	}
	return nil, fmt.Errorf("unknown chart period %q", period)
}

// GetWeeklyData returns the last seven days ending today, labelled by weekday.
func (s *AnalyticsService) GetWeeklyData(ctx context.Context) (*domain.ChartData, error) {
	totals, now, err := s.dailyTotals(ctx)
	if err != nil {
		return nil, err
	}
	data := &domain.ChartData{Period: domain.ChartWeek}
	for i := 6; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		data.Append(day.Weekday().String()[:3], totals[domain.DateKey(day)])
	}
	return data, nil
}

// GetMonthlyData returns every day of the current month. Only day 1, every
// fifth day and the last day carry a label.
func (s *AnalyticsService) GetMonthlyData(ctx context.Context) (*domain.ChartData, error) {
	totals, now, err := s.dailyTotals(ctx)
	if err != nil {
		return nil, err
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()

	data := &domain.ChartData{Period: domain.ChartMonth}
	for d := 1; d <= daysInMonth; d++ {
		label := ""
		if d == 1 || d%5 == 0 || d == daysInMonth {
			label = fmt.Sprintf("Day %d", d)
		}
		data.Append(label, totals[domain.DateKey(first.AddDate(0, 0, d-1))])
	}
	return data, nil
}

// GetYearlyData returns the twelve months of the current year.
func (s *AnalyticsService) GetYearlyData(ctx context.Context) (*domain.ChartData, error) {
	totals, now, err := s.dailyTotals(ctx)
	if err != nil {
		return nil, err
	}
	months := make([]int, 12)
	prefix := fmt.Sprintf("%04d-", now.Year())
	for day, minutes := range totals {
		if len(day) < 7 || day[:5] != prefix {
			continue
		}
		m, err := strconv.Atoi(day[5:7])
		if err != nil || m < 1 || m > 12 {
			continue
		}
		months[m-1] += minutes
	}

	data := &domain.ChartData{Period: domain.ChartYear}
	for m := time.January; m <= time.December; m++ {
		data.Append(m.String()[:3], months[m-1])
	}
	return data, nil
}

// dailyTotals sums work-session minutes per calendar day in the clock's location.
func (s *AnalyticsService) dailyTotals(ctx context.Context) (map[string]int, time.Time, error) {
	now := s.clock.Now()
	sessions, err := s.docs.GetSessions(ctx)
	if err != nil {
		return nil, now, err
	}
	totals := make(map[string]int)
	for _, sess := range sessions {
		if sess.Type != domain.SessionTypeWork {
			continue
		}
		totals[domain.DateKey(sess.StartTime.In(now.Location()))] += sess.Duration
	}
	return totals, now, nil
}
