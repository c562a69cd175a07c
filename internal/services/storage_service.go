// Package services implements the application layer (use cases)
// following hexagonal architecture principles.
package services

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// Document keys in the key-value store.
const (
	KeySettings   = "royal_pomodoro_settings"
	KeyTasks      = "royal_pomodoro_tasks"
	KeySessions   = "royal_pomodoro_sessions"
	KeyStatistics = "royal_pomodoro_stats"

	corruptSuffix = ".corrupt"
)

// DocumentKeys lists every document key.
var DocumentKeys = []string{KeySettings, KeyTasks, KeySessions, KeyStatistics}

// StorageService reads and writes the persisted documents.
// A document that cannot be decoded is copied to "<key>.corrupt" and read
// as its default value; the next write replaces it.
type StorageService struct {
	store    ports.KeyValueStore
	clock    ports.Clock
	defaults domain.Settings
}

// NewStorageService creates a new storage service. defaults seeds the
// settings document on first run.
func NewStorageService(store ports.KeyValueStore, clock ports.Clock, defaults domain.Settings) *StorageService {
	return &StorageService{store: store, clock: clock, defaults: defaults}
}

// Init creates every missing document with its default value.
func (s *StorageService) Init(ctx context.Context) error {
	initial := map[string]any{
		KeySettings:   s.defaults,
		KeyTasks:      []*domain.Task{},
		KeySessions:   []*domain.Session{},
		KeyStatistics: domain.DefaultStatistics(s.clock.Now()),
	}
	for _, key := range DocumentKeys {
		_, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := s.put(ctx, key, initial[key]); err != nil {
			return err
		}
		log.Debug().Str("key", key).Msg("initialized document")
	}
	return nil
}

// DefaultSettings returns the settings a reset restores.
func (s *StorageService) DefaultSettings() domain.Settings {
	return s.defaults
}

// GetSettings returns the stored settings.
func (s *StorageService) GetSettings(ctx context.Context) (domain.Settings, error) {
	return load(ctx, s, KeySettings, func() domain.Settings { return s.defaults })
}

// SaveSettings replaces the stored settings.
func (s *StorageService) SaveSettings(ctx context.Context, settings domain.Settings) error {
	return s.put(ctx, KeySettings, settings)
}

// GetTasks returns every task, newest first.
func (s *StorageService) GetTasks(ctx context.Context) ([]*domain.Task, error) {
	return load(ctx, s, KeyTasks, func() []*domain.Task { return []*domain.Task{} })
}

// SaveTasks replaces the stored task list.
func (s *StorageService) SaveTasks(ctx context.Context, tasks []*domain.Task) error {
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return s.put(ctx, KeyTasks, tasks)
}

// GetSessions returns the session log in insertion order.
func (s *StorageService) GetSessions(ctx context.Context) ([]*domain.Session, error) {
	return load(ctx, s, KeySessions, func() []*domain.Session { return []*domain.Session{} })
}

// SaveSessions replaces the stored session log.
func (s *StorageService) SaveSessions(ctx context.Context, sessions []*domain.Session) error {
	if sessions == nil {
		sessions = []*domain.Session{}
	}
	return s.put(ctx, KeySessions, sessions)
}

// GetStatistics returns the stored statistics.
func (s *StorageService) GetStatistics(ctx context.Context) (domain.Statistics, error) {
	stats, err := load(ctx, s, KeyStatistics, func() domain.Statistics {
		return domain.DefaultStatistics(s.clock.Now())
	})
	if err != nil {
		return stats, err
	}
	if stats.DailyTotals == nil {
		stats.DailyTotals = make(map[string]int)
	}
	return stats, nil
}

// SaveStatistics replaces the stored statistics.
func (s *StorageService) SaveStatistics(ctx context.Context, stats domain.Statistics) error {
	return s.put(ctx, KeyStatistics, stats)
}

// Export collects every document into a backup.
func (s *StorageService) Export(ctx context.Context) (*domain.ExportDocument, error) {
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.GetTasks(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.GetSessions(ctx)
	if err != nil {
		return nil, err
	}
	stats, err := s.GetStatistics(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.ExportDocument{
		Settings:   &settings,
		Tasks:      tasks,
		Sessions:   sessions,
		Statistics: &stats,
		ExportDate: s.clock.Now(),
	}, nil
}

// Import writes every document present in doc and leaves the others untouched.
// Settings are validated before anything is written.
func (s *StorageService) Import(ctx context.Context, doc *domain.ExportDocument) error {
	if doc == nil {
		return nil
	}
	if doc.Settings != nil {
		if err := doc.Settings.Validate(); err != nil {
			return fmt.Errorf("invalid settings in import: %w", err)
		}
	}

	if doc.Settings != nil {
		if err := s.SaveSettings(ctx, *doc.Settings); err != nil {
			return err
		}
	}
	if doc.Tasks != nil {
		if err := s.SaveTasks(ctx, doc.Tasks); err != nil {
			return err
		}
	}
	if doc.Sessions != nil {
		if err := s.SaveSessions(ctx, doc.Sessions); err != nil {
			return err
		}
	}
	if doc.Statistics != nil {
		if err := s.SaveStatistics(ctx, *doc.Statistics); err != nil {
			return err
		}
	}
	return nil
}

// ClearAll deletes every document and recreates the defaults.
func (s *StorageService) ClearAll(ctx context.Context) error {
	keys, err := s.store.Keys(ctx)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return s.Init(ctx)
}

func (s *StorageService) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func load[T any](ctx context.Context, s *StorageService, key string, fallback func() T) (T, error) {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return fallback(), nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt document, falling back to defaults")
		if err := s.store.Set(ctx, key+corruptSuffix, data); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to back up corrupt document")
		}
		return fallback(), nil
	}
	return v, nil
}
