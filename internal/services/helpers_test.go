package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xvierd/royal-pomodoro/internal/adapters/storage"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

var testNow = time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeTicker struct {
	running bool
	onTick  func()
}

func (f *fakeTicker) Start(onTick func()) {
	f.running = true
	f.onTick = onTick
}

func (f *fakeTicker) Stop() {
	f.running = false
}

type fakeNotifier struct {
	mu     sync.Mutex
	shown  []ports.Notification
	sounds int
}

func (f *fakeNotifier) Show(_ context.Context, n ports.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shown = append(f.shown, n)
}

func (f *fakeNotifier) PlaySound(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sounds++
}

func (f *fakeNotifier) titles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.shown))
	for i, n := range f.shown {
		out[i] = n.Title
	}
	return out
}

type recordingObserver struct {
	infos []domain.SessionInfo
	ticks int
}

func (r *recordingObserver) SessionInfoChanged(info domain.SessionInfo) {
	r.infos = append(r.infos, info)
}

func (r *recordingObserver) Tick(domain.TimerState) {
	r.ticks++
}

func setupTestStorage(t *testing.T) ports.KeyValueStore {
	t.Helper()
	store, err := storage.NewMemory()
	require.NoError(t, err, "failed to create test storage")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

type testApp struct {
	store     ports.KeyValueStore
	clock     *fakeClock
	docs      *StorageService
	stats     *StatisticsService
	sessions  *SessionService
	tasks     *TaskService
	settings  *SettingsService
	analytics *AnalyticsService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store := setupTestStorage(t)
	clock := &fakeClock{now: testNow}
	docs := NewStorageService(store, clock, domain.DefaultSettings())
	require.NoError(t, docs.Init(context.Background()))

	stats := NewStatisticsService(docs, clock, domain.StreakModeDaily)
	return &testApp{
		store:     store,
		clock:     clock,
		docs:      docs,
		stats:     stats,
		sessions:  NewSessionService(docs, stats, clock),
		tasks:     NewTaskService(docs, stats, clock),
		settings:  NewSettingsService(docs),
		analytics: NewAnalyticsService(docs, clock),
	}
}

// runSeconds fires n ticks through the timer and advances the clock with them.
func runSeconds(app *testApp, tm *Timer, n int) {
	for i := 0; i < n; i++ {
		app.clock.Advance(time.Second)
		tm.Tick()
	}
}
