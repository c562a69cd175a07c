package ports

import (
	"context"

	"github.com/xvierd/royal-pomodoro/internal/domain"
)

// Ticker drives the countdown with one callback per second.
// This is a driven port (implemented by adapters).
type Ticker interface {
	// Start begins calling onTick until Stop is called. Starting a running
	// ticker replaces its callback.
	Start(onTick func())

	// Stop cancels pending callbacks. Stopping an idle ticker is a no-op.
	Stop()
}

// TimerObserver receives timer events. Callbacks run on the goroutine that
// caused the event and must not call back into the timer.
type TimerObserver interface {
	// SessionInfoChanged is called on every phase entry.
	SessionInfoChanged(info domain.SessionInfo)

	// Tick is called after every countdown step.
	Tick(state domain.TimerState)
}

// NotificationKind classifies a notification for styling.
type NotificationKind string

const (
	NotificationInfo    NotificationKind = "info"
	NotificationSuccess NotificationKind = "success"
	NotificationWarning NotificationKind = "warning"
	NotificationError   NotificationKind = "error"
)

// Notification is a fire-and-forget message for the user.
type Notification struct {
	Title    string
	Message  string
	Kind     NotificationKind
	Duration int // display time in milliseconds; 0 uses the adapter default
}

// Notifier delivers notifications and sounds. Delivery failures are the
// adapter's concern and are never returned to the caller.
type Notifier interface {
	Show(ctx context.Context, n Notification)
	PlaySound(ctx context.Context)
}
