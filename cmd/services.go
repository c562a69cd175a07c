package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/xvierd/royal-pomodoro/internal/adapters/clock"
	"github.com/xvierd/royal-pomodoro/internal/adapters/notification"
	"github.com/xvierd/royal-pomodoro/internal/adapters/storage"
	"github.com/xvierd/royal-pomodoro/internal/config"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
	"github.com/xvierd/royal-pomodoro/internal/services"
)

// appDeps groups all service-layer dependencies initialized at startup.
type appDeps struct {
	config    *config.Config
	dbPath    string
	store     ports.KeyValueStore
	clock     ports.Clock
	docs      *services.StorageService
	stats     *services.StatisticsService
	sessions  *services.SessionService
	tasks     *services.TaskService
	settings  *services.SettingsService
	analytics *services.AnalyticsService
	state     *services.StateService
}

// app holds all initialized service dependencies.
// Populated by initializeServices() and accessible to all commands.
var app appDeps

// initializeServices loads the configuration, sets up logging, opens the
// database and composes the services.
func initializeServices(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	if configPath != "" {
		app.config, err = config.LoadFrom(configPath)
	} else {
		app.config, err = config.Load()
	}
	if err != nil {
		app.config = config.DefaultConfig()
		defer log.Warn().Err(err).Msg("using default configuration")
	}

	level, format := app.config.Log.Level, app.config.Log.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}
	if err := configureLogging(level, format, os.Stderr); err != nil {
		return err
	}

	app.dbPath = dbPath
	if app.dbPath == "" {
		app.dbPath = config.GetDBPath(app.config)
	}
	if err := os.MkdirAll(filepath.Dir(app.dbPath), 0o750); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	app.store, err = storage.New(app.dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	defaults := app.config.ToSettings()
	if err := defaults.Validate(); err != nil {
		log.Warn().Err(err).Msg("ignoring invalid configured defaults")
		defaults = domain.DefaultSettings()
	}

	app.clock = clock.SystemClock{UTC: app.config.Statistics.UTCDates}
	app.docs = services.NewStorageService(app.store, app.clock, defaults)
	if err := app.docs.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize documents: %w", err)
	}

	app.stats = services.NewStatisticsService(app.docs, app.clock, app.config.StreakMode())
	app.tasks = services.NewTaskService(app.docs, app.stats, app.clock)
	app.sessions = services.NewSessionService(app.docs, app.stats, app.clock)
	if err := app.sessions.Load(ctx); err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	app.settings = services.NewSettingsService(app.docs)
	app.analytics = services.NewAnalyticsService(app.docs, app.clock)
	app.state = services.NewStateService(app.settings, app.stats, app.tasks, app.sessions, app.analytics)

	log.Debug().Str("db", app.dbPath).Msg("services initialized")
	return nil
}

// newTimer builds a timer on the initialized services. Settings changes made
// through app.settings are applied to it.
func newTimer(ctx context.Context, observer ports.TimerObserver) (*services.Timer, *notification.Notifier, *clock.Ticker, error) {
	settings, err := app.settings.GetSettings(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var timer *services.Timer
	notifier := notification.New(func() domain.Settings { return timer.Settings() }, app.config.Notifications.Icon)
	ticker := clock.NewTicker(0)

	timer = services.NewTimer(services.TimerDeps{
		Sessions: app.sessions,
		Tasks:    app.tasks,
		Ticker:   ticker,
		Notifier: notifier,
		Observer: observer,
	}, settings)
	app.settings.OnChange(timer.LoadSettings)

	return timer, notifier, ticker, nil
}

// cleanupServices closes all resources.
func cleanupServices() error {
	if app.store != nil {
		err := app.store.Close()
		app.store = nil
		return err
	}
	return nil
}
