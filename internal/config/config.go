// Package config provides configuration management for Royal Pomodoro.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

const (
	defaultDataDir = "~/.royal"
	envPrefix      = "ROYAL"
)

// Config holds all configuration for the application.
type Config struct {
	Storage       StorageConfig      `mapstructure:"storage"`
	Log           LogConfig          `mapstructure:"log"`
	Statistics    StatisticsConfig   `mapstructure:"statistics"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Defaults      DefaultsConfig     `mapstructure:"defaults"`
	TUI           TUIConfig          `mapstructure:"tui"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StatisticsConfig controls how focus time is aggregated.
type StatisticsConfig struct {
	StreakMode string `mapstructure:"streak_mode"`
	UTCDates   bool   `mapstructure:"utc_dates"`
}

// NotificationConfig holds desktop notification settings.
type NotificationConfig struct {
	Icon string `mapstructure:"icon"`
}

// DefaultsConfig seeds the stored settings on first run.
type DefaultsConfig struct {
	WorkDuration    Duration `mapstructure:"work_duration"`
	BreakDuration   Duration `mapstructure:"break_duration"`
	LongBreak       Duration `mapstructure:"long_break"`
	SessionsPerSet  int      `mapstructure:"sessions_per_set"`
	AutoStartBreaks bool     `mapstructure:"auto_start_breaks"`
	Notifications   bool     `mapstructure:"notifications"`
	Sound           bool     `mapstructure:"sound"`
	Theme           string   `mapstructure:"theme"`
}

// TUIConfig holds terminal interface settings.
type TUIConfig struct {
	Refresh Duration `mapstructure:"refresh"`
	WatchDB bool     `mapstructure:"watch_db"`
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Minutes returns the duration in whole minutes.
func (d Duration) Minutes() int {
	return int(time.Duration(d) / time.Minute)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	s := domain.DefaultSettings()
	return &Config{
		Storage: StorageConfig{DataDir: defaultDataDir},
		Log:     LogConfig{Level: "warn", Format: "console"},
		Statistics: StatisticsConfig{
			StreakMode: string(domain.StreakModeDaily),
		},
		Defaults: DefaultsConfig{
			WorkDuration:    Duration(time.Duration(s.WorkDuration) * time.Minute),
			BreakDuration:   Duration(time.Duration(s.BreakDuration) * time.Minute),
			LongBreak:       Duration(time.Duration(s.LongBreakDuration) * time.Minute),
			SessionsPerSet:  s.SessionsPerSet,
			AutoStartBreaks: s.AutoStartBreaks,
			Notifications:   s.NotificationsEnabled,
			Sound:           s.SoundEnabled,
			Theme:           string(s.Theme),
		},
		TUI: TUIConfig{
			Refresh: Duration(250 * time.Millisecond),
			WatchDB: true,
		},
	}
}

// Load loads the configuration from the default config file.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration at configPath, creating it with defaults
// when it does not exist. ROYAL_* environment variables override file values.
func LoadFrom(configPath string) (*Config, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := SaveTo(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	v := newViper(configPath)
	setDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	dataDir, err := expandHome(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.Storage.DataDir = dataDir

	return &cfg, nil
}

// Save saves the configuration to the default config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveTo(configPath, cfg)
}

// SaveTo writes cfg as TOML to configPath.
func SaveTo(configPath string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := newViper(configPath)
	v.Set("storage.data_dir", cfg.Storage.DataDir)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("statistics.streak_mode", cfg.Statistics.StreakMode)
	v.Set("statistics.utc_dates", cfg.Statistics.UTCDates)
	v.Set("notifications.icon", cfg.Notifications.Icon)
	v.Set("defaults.work_duration", cfg.Defaults.WorkDuration.String())
	v.Set("defaults.break_duration", cfg.Defaults.BreakDuration.String())
	v.Set("defaults.long_break", cfg.Defaults.LongBreak.String())
	v.Set("defaults.sessions_per_set", cfg.Defaults.SessionsPerSet)
	v.Set("defaults.auto_start_breaks", cfg.Defaults.AutoStartBreaks)
	v.Set("defaults.notifications", cfg.Defaults.Notifications)
	v.Set("defaults.sound", cfg.Defaults.Sound)
	v.Set("defaults.theme", cfg.Defaults.Theme)
	v.Set("tui.refresh", cfg.TUI.Refresh.String())
	v.Set("tui.watch_db", cfg.TUI.WatchDB)

	return v.WriteConfigAs(configPath)
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".royal", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "royal.db")
}

// GetLogPath returns the path of the log file used while the TUI owns the terminal.
func GetLogPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "royal.log")
}

// StreakMode returns the configured streak mode, defaulting to daily.
func (c *Config) StreakMode() domain.StreakMode {
	if domain.StreakMode(c.Statistics.StreakMode) == domain.StreakModeLegacy {
		return domain.StreakModeLegacy
	}
	return domain.StreakModeDaily
}

// ToSettings converts the first-run defaults into domain settings.
func (c *Config) ToSettings() domain.Settings {
	return domain.Settings{
		WorkDuration:         c.Defaults.WorkDuration.Minutes(),
		BreakDuration:        c.Defaults.BreakDuration.Minutes(),
		LongBreakDuration:    c.Defaults.LongBreak.Minutes(),
		SessionsPerSet:       c.Defaults.SessionsPerSet,
		AutoStartBreaks:      c.Defaults.AutoStartBreaks,
		NotificationsEnabled: c.Defaults.Notifications,
		SoundEnabled:         c.Defaults.Sound,
		Theme:                domain.Theme(c.Defaults.Theme),
	}
}

func newViper(configPath string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func expandHome(dir string) (string, error) {
	if dir == "" {
		dir = defaultDataDir
	}
	if dir != "~" && !strings.HasPrefix(dir, "~/") {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, strings.TrimPrefix(dir, "~")), nil
}

// setDefaults sets default values for viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("storage.data_dir", d.Storage.DataDir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("statistics.streak_mode", d.Statistics.StreakMode)
	v.SetDefault("statistics.utc_dates", d.Statistics.UTCDates)
	v.SetDefault("notifications.icon", d.Notifications.Icon)
	v.SetDefault("defaults.work_duration", d.Defaults.WorkDuration.String())
	v.SetDefault("defaults.break_duration", d.Defaults.BreakDuration.String())
	v.SetDefault("defaults.long_break", d.Defaults.LongBreak.String())
	v.SetDefault("defaults.sessions_per_set", d.Defaults.SessionsPerSet)
	v.SetDefault("defaults.auto_start_breaks", d.Defaults.AutoStartBreaks)
	v.SetDefault("defaults.notifications", d.Defaults.Notifications)
	v.SetDefault("defaults.sound", d.Defaults.Sound)
	v.SetDefault("defaults.theme", d.Defaults.Theme)
	v.SetDefault("tui.refresh", d.TUI.Refresh.String())
	v.SetDefault("tui.watch_db", d.TUI.WatchDB)
}
