package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

type timerFixture struct {
	app      *testApp
	timer    *Timer
	ticker   *fakeTicker
	notifier *fakeNotifier
	observer *recordingObserver
}

func newTimerFixture(t *testing.T, settings domain.Settings) *timerFixture {
	t.Helper()
	app := newTestApp(t)
	f := &timerFixture{
		app:      app,
		ticker:   &fakeTicker{},
		notifier: &fakeNotifier{},
		observer: &recordingObserver{},
	}
	f.timer = NewTimer(TimerDeps{
		Sessions: app.sessions,
		Tasks:    app.tasks,
		Ticker:   f.ticker,
		Notifier: f.notifier,
		Observer: f.observer,
	}, settings)
	return f
}

func TestTimer_FullWorkPhase(t *testing.T) {
	f := newTimerFixture(t, domain.DefaultSettings())
	ctx := context.Background()

	require.NoError(t, f.timer.Start(ctx))
	assert.True(t, f.ticker.running)
	open := f.app.sessions.Current()
	require.NotNil(t, open)
	assert.Equal(t, domain.SessionStatusActive, open.Status)

	runSeconds(f.app, f.timer, 25*60)

	state := f.timer.Snapshot()
	assert.Equal(t, domain.PhaseBreak, state.Phase)
	assert.True(t, state.Running, "breaks auto-start by default")
	assert.Equal(t, 5*time.Minute, state.TimeLeft)
	assert.Equal(t, 1, state.SessionCount)
	assert.Nil(t, state.OpenSession)

	sessions, err := f.app.sessions.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 25, sessions[0].Duration)
	assert.True(t, sessions[0].WasCompleted)

	stats, err := f.app.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, stats.TotalFocusMinutes)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 1, stats.CurrentStreak)

	assert.Equal(t, []string{"Session Focus Started", "Session Break Started", "Session Complete!"}, f.notifier.titles())
	assert.Equal(t, "Great work! Time for a break.", f.notifier.shown[2].Message)
	assert.Equal(t, 1, f.notifier.sounds)

	require.Len(t, f.observer.infos, 1)
	assert.Equal(t, domain.SessionInfo{Phase: domain.PhaseBreak, Ordinal: 2, TaskLabel: domain.NoActiveTaskLabel}, f.observer.infos[0])
	assert.Equal(t, 25*60, f.observer.ticks)
}

func TestTimer_LongBreakAfterSet(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.LongBreakDuration = 30
	f := newTimerFixture(t, settings)
	ctx := context.Background()

	require.NoError(t, f.timer.Start(ctx))
	for i := 0; i < 3; i++ {
		require.NoError(t, f.timer.Skip(ctx)) // work -> break
		require.NoError(t, f.timer.Skip(ctx)) // break -> work
	}
	require.NoError(t, f.timer.Skip(ctx))

	state := f.timer.Snapshot()
	assert.Equal(t, domain.PhaseLongBreak, state.Phase)
	assert.Equal(t, 15*time.Minute, state.TotalTime, "long break ignores the configured length")
	assert.Equal(t, 0, state.SessionCount)
	assert.Contains(t, f.notifier.titles(), "Long Break!")

	stats, err := f.app.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalSessions)

	require.NoError(t, f.timer.Skip(ctx))
	state = f.timer.Snapshot()
	assert.Equal(t, domain.PhaseWork, state.Phase)
	assert.True(t, state.Running)
	assert.Equal(t, "Break finished! Time to focus.", f.notifier.shown[len(f.notifier.shown)-1].Message)
}

func TestTimer_NoAutoStartBreaks(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.AutoStartBreaks = false
	f := newTimerFixture(t, settings)
	ctx := context.Background()

	require.NoError(t, f.timer.Start(ctx))
	require.NoError(t, f.timer.Skip(ctx))

	state := f.timer.Snapshot()
	assert.Equal(t, domain.PhaseBreak, state.Phase)
	assert.False(t, state.Running)
	assert.False(t, f.ticker.running)

	require.NoError(t, f.timer.Start(ctx))
	require.NoError(t, f.timer.Skip(ctx))

	state = f.timer.Snapshot()
	assert.Equal(t, domain.PhaseWork, state.Phase)
	assert.True(t, state.Running, "work always auto-starts after a break")
	assert.NotNil(t, f.app.sessions.Current())
}

func TestTimer_ResumeRestartsSessionClock(t *testing.T) {
	f := newTimerFixture(t, domain.DefaultSettings())
	ctx := context.Background()

	require.NoError(t, f.timer.Start(ctx))
	runSeconds(f.app, f.timer, 10*60)
	require.NoError(t, f.timer.Pause(ctx))
	assert.Equal(t, domain.SessionStatusPaused, f.app.sessions.Current().Status)

	f.app.clock.Advance(time.Hour)
	runSeconds(f.app, f.timer, 30) // ignored while paused
	assert.Equal(t, 15*time.Minute, f.timer.Snapshot().TimeLeft)

	require.NoError(t, f.timer.Start(ctx))
	runSeconds(f.app, f.timer, 15*60)

	sessions, err := f.app.sessions.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, 15, sessions[0].Duration, "only time since the resume counts")
}

func TestTimer_Reset(t *testing.T) {
	tests := []struct {
		name  string
		pause bool
	}{
		{name: "while running"},
		{name: "while paused", pause: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTimerFixture(t, domain.DefaultSettings())
			ctx := context.Background()

			require.NoError(t, f.timer.Start(ctx))
			runSeconds(f.app, f.timer, 5*60)
			if tt.pause {
				require.NoError(t, f.timer.Pause(ctx))
			}
			require.NoError(t, f.timer.Reset(ctx))

			state := f.timer.Snapshot()
			assert.False(t, state.Running)
			assert.Equal(t, 25*time.Minute, state.TimeLeft)
			assert.Nil(t, f.app.sessions.Current())

			sessions, err := f.app.sessions.ListSessions(ctx)
			require.NoError(t, err)
			assert.Empty(t, sessions)

			stats, err := f.app.stats.GetStatistics(ctx)
			require.NoError(t, err)
			assert.Zero(t, stats.TotalFocusMinutes)
			assert.Zero(t, stats.TotalSessions)
		})
	}
}

func TestTimer_StartTwiceKeepsOneSession(t *testing.T) {
	f := newTimerFixture(t, domain.DefaultSettings())
	ctx := context.Background()

	require.NoError(t, f.timer.Start(ctx))
	require.NoError(t, f.timer.Start(ctx))
	require.NoError(t, f.timer.Toggle(ctx))
	require.NoError(t, f.timer.Toggle(ctx))

	sessions, err := f.app.sessions.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestTimer_SetDuration(t *testing.T) {
	f := newTimerFixture(t, domain.DefaultSettings())
	ctx := context.Background()

	assert.ErrorIs(t, f.timer.SetDuration(ctx, 0), domain.ErrInvalidDuration)

	require.NoError(t, f.timer.Start(ctx))
	require.NoError(t, f.timer.SetDuration(ctx, 50))
	state := f.timer.Snapshot()
	assert.False(t, state.Running)
	assert.Equal(t, 50*time.Minute, state.TimeLeft)
	assert.Equal(t, 50*time.Minute, state.TotalTime)

	require.NoError(t, f.timer.Skip(ctx))
	assert.Equal(t, 5*time.Minute, f.timer.Snapshot().TotalTime)
	require.NoError(t, f.timer.Skip(ctx))
	assert.Equal(t, 25*time.Minute, f.timer.Snapshot().TotalTime, "overrides end at the next phase")
}

func TestTimer_LoadSettings(t *testing.T) {
	f := newTimerFixture(t, domain.DefaultSettings())
	ctx := context.Background()

	updated := domain.DefaultSettings()
	updated.WorkDuration = 30
	updated.SessionsPerSet = 2
	f.timer.LoadSettings(updated)

	state := f.timer.Snapshot()
	assert.Equal(t, 30*time.Minute, state.TimeLeft, "idle untouched countdown is resized")
	assert.Equal(t, 2, state.SessionsPerSet)

	require.NoError(t, f.timer.Start(ctx))
	runSeconds(f.app, f.timer, 60)
	updated.WorkDuration = 45
	f.timer.LoadSettings(updated)
	assert.Equal(t, 29*time.Minute, f.timer.Snapshot().TimeLeft, "running countdown keeps its length")
}

func TestTimer_TaskCredit(t *testing.T) {
	f := newTimerFixture(t, domain.DefaultSettings())
	ctx := context.Background()

	task, err := f.app.tasks.AddTask(ctx, AddTaskRequest{Title: "Write report", EstimatedPomodoros: 1})
	require.NoError(t, err)
	require.NoError(t, f.timer.SetCurrentTask(task))
	assert.Equal(t, "Now working on: Write report", f.notifier.shown[0].Message)

	require.NoError(t, f.timer.Start(ctx))
	runSeconds(f.app, f.timer, 25*60)

	assert.Nil(t, f.timer.CurrentTask(), "completed task is detached")
	assert.Contains(t, f.notifier.titles(), "Task Completed!")

	stored, err := f.app.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	assert.Equal(t, 1, stored.CompletedPomodoros)

	sessions, err := f.app.sessions.SessionsForTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	stats, err := f.app.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTasksCompleted)

	assert.ErrorIs(t, f.timer.SetCurrentTask(stored), domain.ErrTaskCompleted)
}

func TestTimer_SoundDisabled(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.SoundEnabled = false
	f := newTimerFixture(t, settings)
	ctx := context.Background()

	require.NoError(t, f.timer.Start(ctx))
	require.NoError(t, f.timer.Skip(ctx))
	assert.Zero(t, f.notifier.sounds)
}

func TestTimer_TickWhileIdle(t *testing.T) {
	f := newTimerFixture(t, domain.DefaultSettings())
	f.timer.Tick()
	assert.Equal(t, 25*time.Minute, f.timer.Snapshot().TimeLeft)
	assert.Zero(t, f.observer.ticks)
}

func TestTimer_InterruptedSessionRestartsClock(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	// A previous run opened a session and exited without pausing it.
	_, err := app.sessions.StartSession(ctx, nil)
	require.NoError(t, err)
	app.clock.Advance(48 * time.Hour)

	sessions := NewSessionService(app.docs, app.stats, app.clock)
	require.NoError(t, sessions.Load(ctx))
	require.Equal(t, domain.SessionStatusActive, sessions.Current().Status)

	tm := NewTimer(TimerDeps{
		Sessions: sessions,
		Tasks:    app.tasks,
		Ticker:   &fakeTicker{},
		Notifier: &fakeNotifier{},
	}, domain.DefaultSettings())
	require.NoError(t, tm.Start(ctx))
	assert.Equal(t, domain.SessionStatusActive, sessions.Current().Status)
	runSeconds(app, tm, 25*60)

	log, err := sessions.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, log, 1)
	assert.Equal(t, domain.SessionStatusCompleted, log[0].Status)
	assert.Equal(t, 25, log[0].Duration)

	stats, err := app.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, stats.TotalFocusMinutes)
	assert.Equal(t, 1, stats.TotalSessions)
}

func TestTimer_TickFromEarlierStartIsDropped(t *testing.T) {
	f := newTimerFixture(t, domain.DefaultSettings())
	ctx := context.Background()

	require.NoError(t, f.timer.Start(ctx))
	earlier := f.ticker.onTick
	require.NoError(t, f.timer.Pause(ctx))
	require.NoError(t, f.timer.Start(ctx))

	earlier()
	assert.Equal(t, 25*time.Minute, f.timer.Snapshot().TimeLeft)

	f.ticker.onTick()
	assert.Equal(t, 25*time.Minute-time.Second, f.timer.Snapshot().TimeLeft)
}
