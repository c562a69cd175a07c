package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// StatisticsService maintains the running focus aggregates.
type StatisticsService struct {
	mu    sync.Mutex
	docs  *StorageService
	clock ports.Clock
	mode  domain.StreakMode
}

// NewStatisticsService creates a new statistics service.
func NewStatisticsService(docs *StorageService, clock ports.Clock, mode domain.StreakMode) *StatisticsService {
	return &StatisticsService{docs: docs, clock: clock, mode: mode}
}

// GetStatistics returns the stored statistics.
func (s *StatisticsService) GetStatistics(ctx context.Context) (*domain.Statistics, error) {
	stats, err := s.docs.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// UpdateStatistics folds one completed session of the given length into the
// totals, the daily totals, the best day and the streak.
func (s *StatisticsService) UpdateStatistics(ctx context.Context, minutes int) (*domain.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.docs.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}
	stats.Record(minutes, s.clock.Now(), s.mode)
	if err := s.docs.SaveStatistics(ctx, stats); err != nil {
		return nil, err
	}

	log.Debug().
		Int("minutes", minutes).
		Int("streak", stats.CurrentStreak).
		Int("total", stats.TotalFocusMinutes).
		Msg("statistics updated")
	return &stats, nil
}

// RecordTaskCompleted adjusts the completed-task counter by delta, never below zero.
func (s *StatisticsService) RecordTaskCompleted(ctx context.Context, delta int) error {
	if delta == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.docs.GetStatistics(ctx)
	if err != nil {
		return err
	}
	stats.TotalTasksCompleted += delta
	if stats.TotalTasksCompleted < 0 {
		stats.TotalTasksCompleted = 0
	}
	return s.docs.SaveStatistics(ctx, stats)
}

// GetProductivityScore combines streak, total focus and task completion rate
// into a 0-100 score.
func (s *StatisticsService) GetProductivityScore(ctx context.Context) (int, error) {
	stats, err := s.docs.GetStatistics(ctx)
	if err != nil {
		return 0, err
	}
	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return 0, err
	}
	return stats.ProductivityScore(domain.ComputeTaskStats(tasks).CompletionRate), nil
}

// RecomputeFromSessions rebuilds the aggregates from the session log and
// recounts completed tasks. Goals are preserved.
func (s *StatisticsService) RecomputeFromSessions(ctx context.Context) (*domain.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.docs.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.docs.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.docs.GetTasks(ctx)
	if err != nil {
		return nil, err
	}

	stats.Rebuild(sessions, s.clock.Now())
	stats.TotalTasksCompleted = domain.ComputeTaskStats(tasks).Completed
	if err := s.docs.SaveStatistics(ctx, stats); err != nil {
		return nil, err
	}

	log.Info().
		Int("sessions", stats.TotalSessions).
		Int("minutes", stats.TotalFocusMinutes).
		Msg("statistics rebuilt from session log")
	return &stats, nil
}
