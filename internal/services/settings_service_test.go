package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/royal-pomodoro/internal/domain"
)

func TestSettingsService_UpdateSettings(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	var seen []domain.Settings
	app.settings.OnChange(func(s domain.Settings) { seen = append(seen, s) })

	work := 50
	updated, err := app.settings.UpdateSettings(ctx, domain.SettingsPatch{WorkDuration: &work})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.WorkDuration)
	assert.Equal(t, 5, updated.BreakDuration)
	require.Len(t, seen, 1)
	assert.Equal(t, updated, seen[0])

	_, err = app.settings.UpdateSettings(ctx, domain.SettingsPatch{})
	require.NoError(t, err)
	assert.Len(t, seen, 1, "empty patches do not notify")
}

func TestSettingsService_RejectsInvalid(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	zero := 0
	_, err := app.settings.UpdateSettings(ctx, domain.SettingsPatch{SessionsPerSet: &zero})
	assert.ErrorIs(t, err, domain.ErrInvalidSessionsCount)

	theme := domain.Theme("neon")
	_, err = app.settings.UpdateSettings(ctx, domain.SettingsPatch{Theme: &theme})
	assert.ErrorIs(t, err, domain.ErrInvalidTheme)

	stored, err := app.settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), stored)
}

func TestSettingsService_ReturnsCopies(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	s, err := app.settings.GetSettings(ctx)
	require.NoError(t, err)
	s.WorkDuration = 99

	again, err := app.settings.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, again.WorkDuration)
}

func TestSettingsService_CycleThemeAndReset(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	for _, want := range []domain.Theme{domain.ThemeRoyal, domain.ThemePurple, domain.ThemeGold, domain.ThemeDark} {
		got, err := app.settings.CycleTheme(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	work := 40
	_, err := app.settings.UpdateSettings(ctx, domain.SettingsPatch{WorkDuration: &work})
	require.NoError(t, err)
	reset, err := app.settings.ResetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), reset)
}
