// Package clock provides the wall clock and the countdown ticker.
package clock

import (
	"sync"
	"time"

	"github.com/xvierd/royal-pomodoro/internal/ports"
)

// SystemClock reads the wall clock. With UTC set, calendar days are UTC days.
type SystemClock struct {
	UTC bool
}

var _ ports.Clock = SystemClock{}

// Now returns the current time.
func (c SystemClock) Now() time.Time {
	if c.UTC {
		return time.Now().UTC()
	}
	return time.Now()
}

// Ticker calls a callback once per interval on its own goroutine.
// Stop never blocks and may be called from inside the callback; callbacks
// scheduled before a Stop or a restart are dropped.
type Ticker struct {
	interval time.Duration

	mu   sync.Mutex
	gen  uint64
	stop chan struct{}
}

var _ ports.Ticker = (*Ticker)(nil)

// NewTicker creates a ticker. A non-positive interval means one second.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{interval: interval}
}

// Start begins ticking, replacing any running loop.
func (t *Ticker) Start(onTick func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()
	t.gen++
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop

	go t.loop(gen, stop, onTick)
}

// Stop cancels the running loop.
func (t *Ticker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Ticker) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.gen++
}

func (t *Ticker) loop(gen uint64, stop <-chan struct{}, onTick func()) {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-stop:
			return
		case <-tk.C:
			if !t.current(gen) {
				return
			}
			onTick()
		}
	}
}

func (t *Ticker) current(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen == gen
}
