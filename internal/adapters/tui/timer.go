package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// Program runs the timer model and forwards timer events into it.
// Events reach the model in the order they were observed.
type Program struct {
	mu      sync.Mutex
	deliver func(tea.Msg)
	queue   []tea.Msg
	wake    chan struct{}
}

// NewProgram creates an idle program adapter.
func NewProgram() *Program {
	return &Program{}
}

// Ensure Program implements ports.TimerObserver.
var _ ports.TimerObserver = (*Program)(nil)

// Run shows the model and blocks until the user quits or ctx is cancelled.
// Inline models render in the normal screen buffer.
func (p *Program) Run(ctx context.Context, m Model) error {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if !m.inline {
		opts = append(opts, tea.WithAltScreen())
	}

	program := tea.NewProgram(m, opts...)
	detach := p.attach(program.Send)
	defer detach()

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// attach starts forwarding queued events to deliver from a single goroutine.
// The returned func stops forwarding and drops anything still queued.
func (p *Program) attach(deliver func(tea.Msg)) func() {
	p.mu.Lock()
	p.deliver = deliver
	p.queue = nil
	p.wake = make(chan struct{}, 1)
	wake, done := p.wake, make(chan struct{})
	p.mu.Unlock()

	go p.forward(deliver, wake, done)

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		close(done)
		p.deliver = nil
		p.queue = nil
	}
}

func (p *Program) forward(deliver func(tea.Msg), wake, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case <-wake:
		}
		p.mu.Lock()
		batch := p.queue
		p.queue = nil
		p.mu.Unlock()
		for _, msg := range batch {
			select {
			case <-done:
				return
			default:
			}
			deliver(msg)
		}
	}
}

// SessionInfoChanged implements ports.TimerObserver.
func (p *Program) SessionInfoChanged(info domain.SessionInfo) {
	p.send(sessionInfoMsg(info))
}

// Tick implements ports.TimerObserver.
func (p *Program) Tick(state domain.TimerState) {
	p.send(timerStateMsg(state))
}

// ShowNotification displays a notification inside the UI.
func (p *Program) ShowNotification(n ports.Notification) {
	p.send(notificationMsg(n))
}

// Reload asks the UI to re-read dashboard figures after an outside change.
func (p *Program) Reload() {
	p.send(reloadMsg{})
}

// send queues msg without blocking; events may originate inside Update.
// Nothing is queued unless the program is running.
func (p *Program) send(msg tea.Msg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deliver == nil {
		return
	}
	p.queue = append(p.queue, msg)
	select {
	case p.wake <- struct{}{}:
	default:
	}
}
