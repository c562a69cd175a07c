package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/xvierd/royal-pomodoro/internal/domain"
)

// SettingsService reads and changes the user preferences. Listeners are
// called after every successful change.
type SettingsService struct {
	mu        sync.Mutex
	docs      *StorageService
	listeners []func(domain.Settings)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(docs *StorageService) *SettingsService {
	return &SettingsService{docs: docs}
}

// OnChange registers fn to receive settings after each change.
func (s *SettingsService) OnChange(fn func(domain.Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// GetSettings returns the stored settings.
func (s *SettingsService) GetSettings(ctx context.Context) (domain.Settings, error) {
	return s.docs.GetSettings(ctx)
}

// SaveSettings validates and replaces the settings wholesale.
func (s *SettingsService) SaveSettings(ctx context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := s.docs.SaveSettings(ctx, settings); err != nil {
		return err
	}
	s.notify(settings)
	return nil
}

// UpdateSettings applies a partial update and returns the result.
func (s *SettingsService) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	current, err := s.docs.GetSettings(ctx)
	if err != nil {
		return current, err
	}
	if patch.IsEmpty() {
		return current, nil
	}
	updated := current.Merge(patch)
	if err := s.SaveSettings(ctx, updated); err != nil {
		return current, err
	}
	return updated, nil
}

// ResetSettings restores the first-run defaults.
func (s *SettingsService) ResetSettings(ctx context.Context) (domain.Settings, error) {
	defaults := s.docs.DefaultSettings()
	if err := s.SaveSettings(ctx, defaults); err != nil {
		return defaults, err
	}
	return defaults, nil
}

// CycleTheme switches to the next theme.
func (s *SettingsService) CycleTheme(ctx context.Context) (domain.Theme, error) {
	current, err := s.docs.GetSettings(ctx)
	if err != nil {
		return "", err
	}
	next := current.Theme.Next()
	if _, err := s.UpdateSettings(ctx, domain.SettingsPatch{Theme: &next}); err != nil {
		return current.Theme, err
	}
	return next, nil
}

func (s *SettingsService) notify(settings domain.Settings) {
	s.mu.Lock()
	listeners := append([]func(domain.Settings){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(settings)
	}
}
