package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// SessionService owns the single open (active or paused) work session.
// The slot is the only way to reach the open record, so at most one session
// is ever open. Operations with nothing to act on return nil without error.
type SessionService struct {
	mu      sync.Mutex
	docs    *StorageService
	stats   *StatisticsService
	clock   ports.Clock
	current *domain.Session
}

// NewSessionService creates a new session service.
func NewSessionService(docs *StorageService, stats *StatisticsService, clock ports.Clock) *SessionService {
	return &SessionService{docs: docs, stats: stats, clock: clock}
}

// Load restores the slot from the persisted log. Extra open records left by
// older data are reported and ignored.
func (s *SessionService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions, err := s.docs.GetSessions(ctx)
	if err != nil {
		return err
	}
	s.current = nil
	for _, sess := range sessions {
		if !sess.IsOpen() {
			continue
		}
		if s.current != nil {
			log.Warn().Str("session", sess.ID).Msg("ignoring extra open session")
			continue
		}
		s.current = sess
	}
	return nil
}

// RecoverInterrupted pauses an open session that is still marked active
// although no countdown is driving it, as left by a run that exited without
// pausing. A later resume restarts its clock. It reports whether a record
// was demoted.
func (s *SessionService) RecoverInterrupted(ctx context.Context) (bool, error) {
	sess, err := s.mutate(ctx, func(sess *domain.Session) bool { return sess.Pause() })
	if err != nil || sess == nil {
		return false, err
	}
	log.Warn().Str("session", sess.ID).Time("started", sess.StartTime).Msg("paused interrupted session")
	return true, nil
}

// Current returns a copy of the open session, or nil.
func (s *SessionService) Current() *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySession(s.current)
}

// StartSession opens a new active work session.
// It fails with domain.ErrSessionAlreadyActive while another session is open.
func (s *SessionService) StartSession(ctx context.Context, taskID *string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return nil, domain.ErrSessionAlreadyActive
	}

	sessions, err := s.docs.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	sess := domain.NewSession(taskID, s.clock.Now())
	sessions = append(sessions, sess)
	if err := s.docs.SaveSessions(ctx, sessions); err != nil {
		return nil, err
	}

	s.current = sess
	log.Debug().Str("session", sess.ID).Msg("session started")
	return copySession(sess), nil
}

// PauseSession pauses the active session.
func (s *SessionService) PauseSession(ctx context.Context) (*domain.Session, error) {
	return s.mutate(ctx, func(sess *domain.Session) bool { return sess.Pause() })
}

// ResumeSession reactivates the paused session. Its start time moves to now,
// so time before the pause does not count toward its duration.
func (s *SessionService) ResumeSession(ctx context.Context) (*domain.Session, error) {
	now := s.clock.Now()
	return s.mutate(ctx, func(sess *domain.Session) bool { return sess.Resume(now) })
}

// CompleteSession finalizes the active session, attaches taskID and feeds its
// rounded duration into the statistics.
func (s *SessionService) CompleteSession(ctx context.Context, taskID *string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.Status != domain.SessionStatusActive {
		return nil, nil
	}

	sessions, err := s.docs.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	sess := findSession(sessions, s.current.ID)
	if sess == nil {
		s.current = nil
		return nil, nil
	}

	if !sess.Complete(taskID, s.clock.Now()) {
		// Closed elsewhere, by another process or an import.
		s.current = nil
		return nil, nil
	}
	if err := s.docs.SaveSessions(ctx, sessions); err != nil {
		return nil, err
	}
	s.current = nil

	if _, err := s.stats.UpdateStatistics(ctx, sess.Duration); err != nil {
		return copySession(sess), err
	}

	log.Debug().Str("session", sess.ID).Int("minutes", sess.Duration).Msg("session completed")
	return copySession(sess), nil
}

// ResetSession deletes the open session without counting it.
// It reports whether a record was removed.
func (s *SessionService) ResetSession(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return false, nil
	}

	sessions, err := s.docs.GetSessions(ctx)
	if err != nil {
		return false, err
	}
	kept := sessions[:0]
	removed := false
	for _, sess := range sessions {
		if sess.ID == s.current.ID {
			removed = true
			continue
		}
		kept = append(kept, sess)
	}
	s.current = nil
	if !removed {
		return false, nil
	}
	if err := s.docs.SaveSessions(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

// ListSessions returns the whole session log.
func (s *SessionService) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	return s.docs.GetSessions(ctx)
}

// SessionsForTask returns the sessions linked to a task.
func (s *SessionService) SessionsForTask(ctx context.Context, taskID string) ([]*domain.Session, error) {
	sessions, err := s.docs.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	var out []*domain.Session
	for _, sess := range sessions {
		if sess.TaskID != nil && *sess.TaskID == taskID {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *SessionService) mutate(ctx context.Context, fn func(*domain.Session) bool) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, nil
	}

	sessions, err := s.docs.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	sess := findSession(sessions, s.current.ID)
	if sess == nil {
		s.current = nil
		return nil, nil
	}
	if !fn(sess) {
		return nil, nil
	}
	if err := s.docs.SaveSessions(ctx, sessions); err != nil {
		return nil, err
	}
	s.current = sess
	return copySession(sess), nil
}

func findSession(sessions []*domain.Session, id string) *domain.Session {
	for _, sess := range sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}

func copySession(s *domain.Session) *domain.Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.TaskID != nil {
		id := *s.TaskID
		c.TaskID = &id
	}
	if s.EndTime != nil {
		end := *s.EndTime
		c.EndTime = &end
	}
	return &c
}
