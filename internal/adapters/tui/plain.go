package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// PlainObserver writes timer events as plain lines, for terminals without
// cursor control and for piping into other tools. The countdown is printed
// once a minute.
type PlainObserver struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlainObserver creates an observer writing to w.
func NewPlainObserver(w io.Writer) *PlainObserver {
	return &PlainObserver{w: w}
}

var _ ports.TimerObserver = (*PlainObserver)(nil)

// SessionInfoChanged implements ports.TimerObserver.
func (o *PlainObserver) SessionInfoChanged(info domain.SessionInfo) {
	o.printf("== %s #%d · %s\n", domain.GetPhaseLabel(info.Phase), info.Ordinal, info.TaskLabel)
}

// Tick implements ports.TimerObserver.
func (o *PlainObserver) Tick(state domain.TimerState) {
	if int(state.TimeLeft.Seconds())%60 != 0 {
		return
	}
	o.printf("%s %s left\n", domain.GetPhaseLabel(state.Phase), formatDuration(state.TimeLeft))
}

// ShowNotification prints a notification.
func (o *PlainObserver) ShowNotification(n ports.Notification) {
	o.printf("** %s %s\n", n.Title, n.Message)
}

func (o *PlainObserver) printf(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	_, _ = fmt.Fprintf(o.w, format, args...)
}
