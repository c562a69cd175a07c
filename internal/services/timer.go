package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xvierd/royal-pomodoro/internal/domain"
	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// TimerDeps are the collaborators of a Timer.
type TimerDeps struct {
	Sessions *SessionService
	Tasks    *TaskService
	Ticker   ports.Ticker
	Notifier ports.Notifier
	Observer ports.TimerObserver
}

// Timer is the countdown and the work/break cycle. It drives the session
// service at phase boundaries. All methods are safe for concurrent use;
// observer and notifier calls are made after the internal lock is released.
type Timer struct {
	mu sync.Mutex

	sessions *SessionService
	tasks    *TaskService
	ticker   ports.Ticker
	notifier ports.Notifier
	observer ports.TimerObserver

	settings     domain.Settings
	phase        domain.Phase
	running      bool
	timeLeft     int // seconds
	totalTime    int // seconds
	sessionCount int
	overridden   bool
	currentTask  *domain.Task
	epoch        uint64 // bumped on every start; ticker callbacks carry theirs
}

// timerEvents are side effects gathered under the lock and run after it.
type timerEvents []func(ctx context.Context)

// NewTimer creates an idle timer in the work phase.
func NewTimer(deps TimerDeps, settings domain.Settings) *Timer {
	t := &Timer{
		sessions: deps.Sessions,
		tasks:    deps.Tasks,
		ticker:   deps.Ticker,
		notifier: deps.Notifier,
		observer: deps.Observer,
		settings: settings,
		phase:    domain.PhaseWork,
	}
	t.totalTime = settings.WorkDuration * 60
	t.timeLeft = t.totalTime
	return t
}

// SetObserver replaces the event observer.
func (t *Timer) SetObserver(o ports.TimerObserver) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observer = o
}

// Start runs the countdown. In the work phase it resumes the paused session
// or opens a new one for the current task. Starting a running timer is a no-op.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	ev, err := t.startLocked(ctx)
	t.mu.Unlock()
	t.emit(ctx, ev)
	return err
}

// Pause stops the countdown and pauses the open work session.
func (t *Timer) Pause(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pauseLocked(ctx)
}

// Toggle starts an idle timer or pauses a running one.
func (t *Timer) Toggle(ctx context.Context) error {
	t.mu.Lock()
	running := t.running
	t.mu.Unlock()
	if running {
		return t.Pause(ctx)
	}
	return t.Start(ctx)
}

// Reset stops the countdown, restores the phase length and, in the work
// phase, discards the open session without counting it.
func (t *Timer) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.pauseLocked(ctx); err != nil {
		return err
	}
	t.timeLeft = t.totalTime
	if t.phase == domain.PhaseWork {
		if _, err := t.sessions.ResetSession(ctx); err != nil {
			return fmt.Errorf("failed to reset session: %w", err)
		}
	}
	return nil
}

// Skip completes the current phase immediately, with the same effects as
// the countdown reaching zero.
func (t *Timer) Skip(ctx context.Context) error {
	t.mu.Lock()
	var err error
	if t.phase == domain.PhaseWork {
		if cur := t.sessions.Current(); cur != nil && cur.Status == domain.SessionStatusPaused {
			_, err = t.sessions.ResumeSession(ctx)
		}
	}
	var ev timerEvents
	if err == nil {
		ev, err = t.completePhaseLocked(ctx)
	}
	t.mu.Unlock()
	t.emit(ctx, ev)
	return err
}

// Tick advances the countdown by one second. It is a no-op while idle.
func (t *Timer) Tick() {
	t.tick(0)
}

// tick advances the countdown for the ticker started at epoch. Zero matches
// any epoch; a tick from an earlier start is dropped.
func (t *Timer) tick(epoch uint64) {
	ctx := context.Background()

	t.mu.Lock()
	if !t.running || (epoch != 0 && epoch != t.epoch) {
		t.mu.Unlock()
		return
	}
	t.timeLeft--
	var ev timerEvents
	var err error
	if t.timeLeft <= 0 {
		ev, err = t.completePhaseLocked(ctx)
	}
	if t.observer != nil {
		state := t.stateLocked()
		obs := t.observer
		ev = append(ev, func(context.Context) { obs.Tick(state) })
	}
	t.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("phase completion failed")
	}
	t.emit(ctx, ev)
}

// SetDuration pauses and overrides the length of the current phase only.
// The override is not persisted and ends at the next phase entry.
func (t *Timer) SetDuration(ctx context.Context, minutes int) error {
	if minutes < 1 {
		return fmt.Errorf("%w: %d minutes", domain.ErrInvalidDuration, minutes)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.pauseLocked(ctx); err != nil {
		return err
	}
	t.totalTime = minutes * 60
	t.timeLeft = t.totalTime
	t.overridden = true
	return nil
}

// LoadSettings takes a new settings snapshot. Phase lengths apply from the
// next phase entry; the live countdown is only resized while the timer sits
// idle in an untouched work phase with no open session. The set size applies
// immediately.
func (t *Timer) LoadSettings(settings domain.Settings) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settings = settings
	untouched := !t.running && t.phase == domain.PhaseWork && !t.overridden &&
		t.timeLeft == t.totalTime && t.sessions.Current() == nil
	if untouched {
		t.totalTime = settings.WorkDuration * 60
		t.timeLeft = t.totalTime
	}
	log.Debug().Bool("resized", untouched).Msg("timer settings reloaded")
}

// SetCurrentTask attaches a task to future work sessions. Completed tasks
// are rejected; nil detaches.
func (t *Timer) SetCurrentTask(task *domain.Task) error {
	if task != nil && task.IsCompleted {
		return domain.ErrTaskCompleted
	}
	t.mu.Lock()
	var ev timerEvents
	if task == nil {
		t.currentTask = nil
	} else {
		c := *task
		t.currentTask = &c
		ev = t.notifyLocked(ev, ports.Notification{
			Title:   "Task Activated",
			Message: "Now working on: " + task.Title,
			Kind:    ports.NotificationInfo,
		})
	}
	ev = t.sessionInfoLocked(ev)
	t.mu.Unlock()
	t.emit(context.Background(), ev)
	return nil
}

// CurrentTask returns a copy of the attached task, or nil.
func (t *Timer) CurrentTask() *domain.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.currentTask == nil {
		return nil
	}
	c := *t.currentTask
	return &c
}

// Snapshot returns the current timer state.
func (t *Timer) Snapshot() domain.TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stateLocked()
}

// Settings returns the settings snapshot in use.
func (t *Timer) Settings() domain.Settings {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.settings
}

func (t *Timer) startLocked(ctx context.Context) (timerEvents, error) {
	if t.running {
		return nil, nil
	}

	if t.phase == domain.PhaseWork {
		cur := t.sessions.Current()
		switch {
		case cur == nil:
			if _, err := t.sessions.StartSession(ctx, t.taskIDLocked()); err != nil {
				return nil, fmt.Errorf("failed to start session: %w", err)
			}
		case cur.Status == domain.SessionStatusActive:
			// Idle timer with an active record: the run that owned it is gone.
			if _, err := t.sessions.RecoverInterrupted(ctx); err != nil {
				return nil, fmt.Errorf("failed to recover session: %w", err)
			}
			fallthrough
		case cur.Status == domain.SessionStatusPaused:
			if _, err := t.sessions.ResumeSession(ctx); err != nil {
				return nil, fmt.Errorf("failed to resume session: %w", err)
			}
		}
	}

	t.running = true
	t.epoch++
	epoch := t.epoch
	t.ticker.Start(func() { t.tick(epoch) })

	title, message := "Session Focus Started", "Time to focus!"
	if t.phase.IsBreak() {
		title, message = "Session Break Started", "Time to relax!"
	}
	log.Debug().Str("phase", string(t.phase)).Int("seconds", t.timeLeft).Msg("timer started")
	return t.notifyLocked(nil, ports.Notification{Title: title, Message: message, Kind: ports.NotificationInfo}), nil
}

func (t *Timer) pauseLocked(ctx context.Context) error {
	t.ticker.Stop()
	wasRunning := t.running
	t.running = false
	if t.phase == domain.PhaseWork {
		if _, err := t.sessions.PauseSession(ctx); err != nil {
			return fmt.Errorf("failed to pause session: %w", err)
		}
	}
	if wasRunning {
		log.Debug().Str("phase", string(t.phase)).Int("seconds", t.timeLeft).Msg("timer paused")
	}
	return nil
}

// completePhaseLocked finishes the current phase, enters the next one and
// auto-starts it.
func (t *Timer) completePhaseLocked(ctx context.Context) (timerEvents, error) {
	t.ticker.Stop()
	t.running = false

	var ev timerEvents
	var errs []error
	completed := t.phase

	if completed == domain.PhaseWork {
		t.sessionCount++
		sess, err := t.sessions.CompleteSession(ctx, t.taskIDLocked())
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to complete session: %w", err))
		}
		if sess != nil && t.currentTask != nil {
			ev = t.creditTaskLocked(ctx, ev, &errs)
		}
		if t.sessionCount >= t.settings.SessionsPerSet {
			t.sessionCount = 0
			ev = t.enterPhaseLocked(ev, domain.PhaseLongBreak)
		} else {
			ev = t.enterPhaseLocked(ev, domain.PhaseBreak)
		}
	} else {
		ev = t.enterPhaseLocked(ev, domain.PhaseWork)
	}

	if completed.IsBreak() || t.settings.AutoStartBreaks {
		startEv, err := t.startLocked(ctx)
		if err != nil {
			errs = append(errs, err)
		}
		ev = append(ev, startEv...)
	}

	if t.settings.SoundEnabled && t.notifier != nil {
		n := t.notifier
		ev = append(ev, func(ctx context.Context) { n.PlaySound(ctx) })
	}
	message := "Great work! Time for a break."
	if completed.IsBreak() {
		message = "Break finished! Time to focus."
	}
	ev = t.notifyLocked(ev, ports.Notification{Title: "Session Complete!", Message: message, Kind: ports.NotificationSuccess})

	log.Info().
		Str("completed", string(completed)).
		Str("next", string(t.phase)).
		Int("count", t.sessionCount).
		Msg("phase completed")

	if len(errs) > 0 {
		return ev, errs[0]
	}
	return ev, nil
}

// creditTaskLocked adds the finished pomodoro to the current task and
// detaches the task once it completes.
func (t *Timer) creditTaskLocked(ctx context.Context, ev timerEvents, errs *[]error) timerEvents {
	task, err := t.tasks.UpdatePomodoroCount(ctx, t.currentTask.ID)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("failed to update task: %w", err))
		return ev
	}
	if task == nil {
		t.currentTask = nil
		return ev
	}
	if task.IsCompleted {
		t.currentTask = nil
		return t.notifyLocked(ev, ports.Notification{
			Title:   "Task Completed!",
			Message: fmt.Sprintf("Finished %q!", task.Title),
			Kind:    ports.NotificationSuccess,
		})
	}
	c := *task
	t.currentTask = &c
	return ev
}

func (t *Timer) enterPhaseLocked(ev timerEvents, phase domain.Phase) timerEvents {
	t.phase = phase
	t.overridden = false
	switch phase {
	case domain.PhaseWork:
		t.totalTime = t.settings.WorkDuration * 60
	case domain.PhaseBreak:
		t.totalTime = t.settings.BreakDuration * 60
	case domain.PhaseLongBreak:
		t.totalTime = domain.LongBreakMinutes * 60
		ev = t.notifyLocked(ev, ports.Notification{
			Title:   "Long Break!",
			Message: fmt.Sprintf("Great job! Take a %d-minute break.", domain.LongBreakMinutes),
			Kind:    ports.NotificationSuccess,
		})
	}
	t.timeLeft = t.totalTime
	return t.sessionInfoLocked(ev)
}

func (t *Timer) sessionInfoLocked(ev timerEvents) timerEvents {
	if t.observer == nil {
		return ev
	}
	info := domain.SessionInfo{
		Phase:     t.phase,
		Ordinal:   t.sessionCount + 1,
		TaskLabel: domain.NoActiveTaskLabel,
	}
	if t.currentTask != nil {
		info.TaskLabel = t.currentTask.Title
	}
	obs := t.observer
	return append(ev, func(context.Context) { obs.SessionInfoChanged(info) })
}

func (t *Timer) notifyLocked(ev timerEvents, n ports.Notification) timerEvents {
	if t.notifier == nil {
		return ev
	}
	notifier := t.notifier
	return append(ev, func(ctx context.Context) { notifier.Show(ctx, n) })
}

func (t *Timer) taskIDLocked() *string {
	if t.currentTask == nil {
		return nil
	}
	id := t.currentTask.ID
	return &id
}

func (t *Timer) stateLocked() domain.TimerState {
	state := domain.TimerState{
		Phase:          t.phase,
		Running:        t.running,
		TimeLeft:       time.Duration(t.timeLeft) * time.Second,
		TotalTime:      time.Duration(t.totalTime) * time.Second,
		SessionCount:   t.sessionCount,
		SessionsPerSet: t.settings.SessionsPerSet,
		OpenSession:    t.sessions.Current(),
	}
	if t.currentTask != nil {
		c := *t.currentTask
		state.Task = &c
	}
	return state
}

func (t *Timer) emit(ctx context.Context, ev timerEvents) {
	for _, fn := range ev {
		fn(ctx)
	}
}
