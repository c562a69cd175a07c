// Package watcher reports changes made to the data files by other processes,
// so a running timer can pick up tasks and settings edited from the CLI.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce collapses bursts of writes into one callback.
const DefaultDebounce = 200 * time.Millisecond

// DBFiles returns the files SQLite writes for the database at dbPath.
func DBFiles(dbPath string) []string {
	return []string{dbPath, dbPath + "-wal"}
}

// Watcher calls onChange after any of the target files is written, created
// or removed. It watches the parent directories since fsnotify cannot watch
// files that do not exist yet.
type Watcher struct {
	targets  map[string]struct{}
	dirs     []string
	onChange func()
	debounce time.Duration

	fsw    *fsnotify.Watcher
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	running   bool
	timer     *time.Timer
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a watcher for the given files.
func New(paths []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths to watch")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	targets := make(map[string]struct{}, len(paths))
	seen := make(map[string]bool)
	var dirs []string
	for _, p := range paths {
		clean := filepath.Clean(p)
		targets[clean] = struct{}{}
		dir := filepath.Dir(clean)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		targets:  targets,
		dirs:     dirs,
		onChange: onChange,
		debounce: debounce,
		fsw:      fsw,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. It fails if no directory could be watched.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	added := 0
	for _, dir := range w.dirs {
		if err := w.fsw.Add(dir); err != nil {
			log.Warn().Err(err).Str("path", dir).Msg("failed to watch directory")
			continue
		}
		added++
	}
	if added == 0 {
		return fmt.Errorf("failed to watch any of %v", w.dirs)
	}

	w.running = true
	go w.loop()
	return nil
}

// Stop stops watching and cancels a pending callback.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	wasRunning := w.running
	w.running = false
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	var err error
	w.closeOnce.Do(func() {
		w.cancel()
		err = w.fsw.Close()
	})
	if wasRunning {
		<-w.done
	}
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if _, watched := w.targets[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("data file changed")
			w.schedule()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running && w.onChange != nil {
		w.onChange()
	}
}
