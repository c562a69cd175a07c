// Package notification delivers desktop notifications and the completion sound.
package notification

import (
	"context"
	"sync"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// DefaultDuration is the display time, in milliseconds, of notifications
// that do not set one.
const DefaultDuration = 5000

// SettingsFunc returns the settings that gate delivery.
type SettingsFunc func() domain.Settings

// Notifier implements ports.Notifier with beeep. Desktop notifications are
// sent only while notifications are enabled and sounds only while sound is
// enabled; failures are logged and dropped.
type Notifier struct {
	settings SettingsFunc
	icon     string

	notify func(title, message, icon string) error
	beep   func() error

	mu     sync.Mutex
	mirror func(ports.Notification)
}

var _ ports.Notifier = (*Notifier)(nil)

// New creates a notifier. icon may be empty.
func New(settings SettingsFunc, icon string) *Notifier {
	return &Notifier{
		settings: settings,
		icon:     icon,
		notify: func(title, message, icon string) error {
			return beeep.Notify(title, message, icon)
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
}

// SetMirror registers a callback that receives every notification regardless
// of the desktop setting, for in-app display.
func (n *Notifier) SetMirror(fn func(ports.Notification)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mirror = fn
}

// Show displays a notification.
func (n *Notifier) Show(_ context.Context, note ports.Notification) {
	if note.Duration <= 0 {
		note.Duration = DefaultDuration
	}
	if note.Kind == "" {
		note.Kind = ports.NotificationInfo
	}

	n.mu.Lock()
	mirror := n.mirror
	n.mu.Unlock()
	if mirror != nil {
		mirror(note)
	}

	if !n.settings().NotificationsEnabled {
		return
	}
	if err := n.notify(note.Title, note.Message, n.icon); err != nil {
		log.Warn().Err(err).Str("title", note.Title).Msg("desktop notification failed")
	}
}

// PlaySound plays the completion sound.
func (n *Notifier) PlaySound(context.Context) {
	if !n.settings().SoundEnabled {
		return
	}
	if err := n.beep(); err != nil {
		log.Warn().Err(err).Msg("failed to play sound")
	}
}
