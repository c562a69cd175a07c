package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

type recorder struct {
	titles []string
	icons  []string
	beeps  int
	err    error
}

func newTestNotifier(settings domain.Settings, rec *recorder) *Notifier {
	n := New(func() domain.Settings { return settings }, "icon.png")
	n.notify = func(title, _, icon string) error {
		rec.titles = append(rec.titles, title)
		rec.icons = append(rec.icons, icon)
		return rec.err
	}
	n.beep = func() error {
		rec.beeps++
		return rec.err
	}
	return n
}

func TestNotifier_Show(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		want    []string
	}{
		{name: "enabled", enabled: true, want: []string{"Session Complete!"}},
		{name: "disabled", enabled: false, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultSettings()
			settings.NotificationsEnabled = tt.enabled
			rec := &recorder{}
			n := newTestNotifier(settings, rec)

			var mirrored []ports.Notification
			n.SetMirror(func(note ports.Notification) { mirrored = append(mirrored, note) })

			n.Show(context.Background(), ports.Notification{Title: "Session Complete!"})
			assert.Equal(t, tt.want, rec.titles)

			assert.Len(t, mirrored, 1, "in-app mirror ignores the desktop setting")
			assert.Equal(t, DefaultDuration, mirrored[0].Duration)
			assert.Equal(t, ports.NotificationInfo, mirrored[0].Kind)
		})
	}
}

func TestNotifier_PlaySound(t *testing.T) {
	settings := domain.DefaultSettings()
	rec := &recorder{}
	newTestNotifier(settings, rec).PlaySound(context.Background())
	assert.Equal(t, 1, rec.beeps)

	settings.SoundEnabled = false
	rec = &recorder{}
	newTestNotifier(settings, rec).PlaySound(context.Background())
	assert.Zero(t, rec.beeps)
}

func TestNotifier_FailuresAreSwallowed(t *testing.T) {
	rec := &recorder{err: errors.New("no dbus")}
	n := newTestNotifier(domain.DefaultSettings(), rec)

	assert.NotPanics(t, func() {
		n.Show(context.Background(), ports.Notification{Title: "x"})
		n.PlaySound(context.Background())
	})
	assert.Equal(t, []string{"icon.png"}, rec.icons)
}
