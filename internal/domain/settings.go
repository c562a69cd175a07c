package domain

import "fmt"

// Theme names a color scheme for the terminal interface.
type Theme string

const (
	ThemeDark   Theme = "dark"
	ThemeRoyal  Theme = "royal"
	ThemePurple Theme = "purple"
	ThemeGold   Theme = "gold"
)

// Themes lists the themes in cycle order.
var Themes = []Theme{ThemeDark, ThemeRoyal, ThemePurple, ThemeGold}

// Next returns the theme after t in cycle order.
func (t Theme) Next() Theme {
	for i, th := range Themes {
		if th == t {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeDark
}

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	for _, th := range Themes {
		if th == t {
			return true
		}
	}
	return false
}

// Settings are the user preferences for the timer. Durations are minutes.
type Settings struct {
	WorkDuration         int   `json:"workDuration" yaml:"workDuration"`
	BreakDuration        int   `json:"breakDuration" yaml:"breakDuration"`
	LongBreakDuration    int   `json:"longBreakDuration" yaml:"longBreakDuration"`
	SessionsPerSet       int   `json:"sessionsPerSet" yaml:"sessionsPerSet"`
	AutoStartBreaks      bool  `json:"autoStartBreaks" yaml:"autoStartBreaks"`
	NotificationsEnabled bool  `json:"notificationsEnabled" yaml:"notificationsEnabled"`
	SoundEnabled         bool  `json:"soundEnabled" yaml:"soundEnabled"`
	Theme                Theme `json:"theme" yaml:"theme"`
}

// DefaultSettings returns the first-run settings.
func DefaultSettings() Settings {
	return Settings{
		WorkDuration:         25,
		BreakDuration:        5,
		LongBreakDuration:    15,
		SessionsPerSet:       4,
		AutoStartBreaks:      true,
		NotificationsEnabled: true,
		SoundEnabled:         true,
		Theme:                ThemeDark,
	}
}

// Validate checks durations, the set size and the theme.
func (s Settings) Validate() error {
	for name, v := range map[string]int{
		"work":       s.WorkDuration,
		"break":      s.BreakDuration,
		"long break": s.LongBreakDuration,
	} {
		if v < 1 {
			return fmt.Errorf("%w: %s duration %d", ErrInvalidDuration, name, v)
		}
	}
	if s.SessionsPerSet < 1 {
		return ErrInvalidSessionsCount
	}
	if !s.Theme.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, s.Theme)
	}
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	WorkDuration         *int   `json:"workDuration,omitempty"`
	BreakDuration        *int   `json:"breakDuration,omitempty"`
	LongBreakDuration    *int   `json:"longBreakDuration,omitempty"`
	SessionsPerSet       *int   `json:"sessionsPerSet,omitempty"`
	AutoStartBreaks      *bool  `json:"autoStartBreaks,omitempty"`
	NotificationsEnabled *bool  `json:"notificationsEnabled,omitempty"`
	SoundEnabled         *bool  `json:"soundEnabled,omitempty"`
	Theme                *Theme `json:"theme,omitempty"`
}

// Merge returns s with the patch applied. The result is not validated.
func (s Settings) Merge(p SettingsPatch) Settings {
	if p.WorkDuration != nil {
		s.WorkDuration = *p.WorkDuration
	}
	if p.BreakDuration != nil {
		s.BreakDuration = *p.BreakDuration
	}
	if p.LongBreakDuration != nil {
		s.LongBreakDuration = *p.LongBreakDuration
	}
	if p.SessionsPerSet != nil {
		s.SessionsPerSet = *p.SessionsPerSet
	}
	if p.AutoStartBreaks != nil {
		s.AutoStartBreaks = *p.AutoStartBreaks
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	if p.SoundEnabled != nil {
		s.SoundEnabled = *p.SoundEnabled
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	return s
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p == SettingsPatch{}
}
