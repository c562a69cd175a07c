package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

func TestSessionService_SingleOpenSession(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	first, err := app.sessions.StartSession(ctx, nil)
	require.NoError(t, err)

	_, err = app.sessions.StartSession(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyActive)

	_, err = app.sessions.PauseSession(ctx)
	require.NoError(t, err)
	_, err = app.sessions.StartSession(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyActive, "a paused session still occupies the slot")

	sessions, err := app.sessions.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, first.ID, sessions[0].ID)
}

func TestSessionService_CompleteRoundsDuration(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{name: "exact", elapsed: 25 * time.Minute, want: 25},
		{name: "rounds up at half", elapsed: 24*time.Minute + 30*time.Second, want: 25},
		{name: "rounds down", elapsed: 25*time.Minute + 29*time.Second, want: 25},
		{name: "under half a minute", elapsed: 20 * time.Second, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			ctx := context.Background()

			_, err := app.sessions.StartSession(ctx, nil)
			require.NoError(t, err)
			app.clock.Advance(tt.elapsed)

			taskID := "task-1"
			sess, err := app.sessions.CompleteSession(ctx, &taskID)
			require.NoError(t, err)
			require.NotNil(t, sess)
			assert.Equal(t, tt.want, sess.Duration)
			assert.Equal(t, domain.SessionStatusCompleted, sess.Status)
			assert.Equal(t, "task-1", *sess.TaskID)
			assert.Nil(t, app.sessions.Current())

			stats, err := app.stats.GetStatistics(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stats.TotalFocusMinutes)
			assert.Equal(t, 1, stats.TotalSessions)
		})
	}
}

func TestSessionService_NothingToActOn(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	sess, err := app.sessions.PauseSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	sess, err = app.sessions.ResumeSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)

	sess, err = app.sessions.CompleteSession(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, sess)

	removed, err := app.sessions.ResetSession(ctx)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestSessionService_CompleteRequiresActive(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.sessions.StartSession(ctx, nil)
	require.NoError(t, err)
	_, err = app.sessions.PauseSession(ctx)
	require.NoError(t, err)

	sess, err := app.sessions.CompleteSession(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.NotNil(t, app.sessions.Current())
}

func TestSessionService_ResetDoesNotTouchTotals(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.sessions.StartSession(ctx, nil)
	require.NoError(t, err)
	app.clock.Advance(25 * time.Minute)
	_, err = app.sessions.CompleteSession(ctx, nil)
	require.NoError(t, err)

	_, err = app.sessions.StartSession(ctx, nil)
	require.NoError(t, err)
	app.clock.Advance(10 * time.Minute)
	_, err = app.sessions.PauseSession(ctx)
	require.NoError(t, err)

	removed, err := app.sessions.ResetSession(ctx)
	require.NoError(t, err)
	assert.True(t, removed)

	sessions, err := app.sessions.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	stats, err := app.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, stats.TotalFocusMinutes)
	assert.Equal(t, 1, stats.TotalSessions)
}

func TestSessionService_ResumeMovesStartTime(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.sessions.StartSession(ctx, nil)
	require.NoError(t, err)
	app.clock.Advance(10 * time.Minute)
	_, err = app.sessions.PauseSession(ctx)
	require.NoError(t, err)
	app.clock.Advance(5 * time.Minute)

	resumed, err := app.sessions.ResumeSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, resumed)
	assert.Equal(t, testNow.Add(15*time.Minute), resumed.StartTime)

	app.clock.Advance(5 * time.Minute)
	done, err := app.sessions.CompleteSession(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, done.Duration)
}

func TestSessionService_LoadRestoresOpenSession(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	now := app.clock.Now()
	paused := domain.NewSession(nil, now)
	paused.Pause()
	extra := domain.NewSession(nil, now)
	done := domain.NewSession(nil, now)
	done.Complete(nil, now.Add(time.Minute))
	require.NoError(t, app.docs.SaveSessions(ctx, []*domain.Session{done, paused, extra}))

	reloaded := NewSessionService(app.docs, app.stats, app.clock)
	require.NoError(t, reloaded.Load(ctx))

	cur := reloaded.Current()
	require.NotNil(t, cur)
	assert.Equal(t, paused.ID, cur.ID)
	assert.Equal(t, domain.SessionStatusPaused, cur.Status)
}

func TestSessionService_RecoverInterrupted(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	started, err := app.sessions.StartSession(ctx, nil)
	require.NoError(t, err)

	reloaded := NewSessionService(app.docs, app.stats, app.clock)
	require.NoError(t, reloaded.Load(ctx))

	demoted, err := reloaded.RecoverInterrupted(ctx)
	require.NoError(t, err)
	assert.True(t, demoted)
	assert.Equal(t, domain.SessionStatusPaused, reloaded.Current().Status)

	sessions, err := app.docs.GetSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, started.ID, sessions[0].ID)
	assert.Equal(t, domain.SessionStatusPaused, sessions[0].Status)

	demoted, err = reloaded.RecoverInterrupted(ctx)
	require.NoError(t, err)
	assert.False(t, demoted, "paused session is left alone")
}

func TestSessionService_CompleteClosedElsewhere(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	_, err := app.sessions.StartSession(ctx, nil)
	require.NoError(t, err)

	other := NewSessionService(app.docs, app.stats, app.clock)
	require.NoError(t, other.Load(ctx))
	app.clock.Advance(25 * time.Minute)

	done, err := other.CompleteSession(ctx, nil)
	require.NoError(t, err)
	require.NotNil(t, done)

	again, err := app.sessions.CompleteSession(ctx, nil)
	require.NoError(t, err)
	assert.Nil(t, again)
	assert.Nil(t, app.sessions.Current())

	stats, err := app.stats.GetStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 25, stats.TotalFocusMinutes)
}
