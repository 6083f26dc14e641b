// Package configwatcher reloads part of a running process when its config
// file changes. It watches the file's directory, debounces bursts of
// writes, and retries the reload until it succeeds.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/tickfeed/pkg/log"
)

// ReloadFunc applies the current contents of the watched file.
type ReloadFunc func(ctx context.Context) error

// Watcher calls a ReloadFunc after the watched file changes.
type Watcher struct {
	mu sync.Mutex

	// Configuration
	path          string
	reload        ReloadFunc
	retryInterval time.Duration
	debounceDelay time.Duration
	logger        log.Logger

	// Runtime state
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	closed   bool
}

// New creates a watcher for path. Nothing is watched until Start.
func New(path string, reload ReloadFunc, opts ...Option) *Watcher {
	w := &Watcher{
		path:          filepath.Clean(path),
		reload:        reload,
		retryInterval: DefaultRetryInterval,
		debounceDelay: DefaultDebounceDelay,
		logger:        log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Start begins watching. The file's directory must exist; the file itself
// may be created later.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.cancel = cancel
	w.mu.Unlock()

	w.logger.Info("config watcher started", log.String("path", w.path))

	w.wg.Add(1)
	go w.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops watching and waits for a pending reload to finish.
func (w *Watcher) Shutdown() {
	w.mu.Lock()
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	if w.debounce != nil && w.debounce.Stop() {
		w.wg.Done()
	}
	w.debounce = nil
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Watcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) debounceReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	if w.debounce != nil && w.debounce.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		defer w.wg.Done()
		w.reloadWithRetry(ctx)
	})
}

// reloadWithRetry retries until success or context cancellation.
func (w *Watcher) reloadWithRetry(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		err := w.reload(ctx)
		if err == nil {
			w.logger.Info("config reloaded", log.String("path", w.path), log.Int("attempts", attempt))
			return
		}
		w.logger.Error("config reload failed",
			log.String("path", w.path),
			log.Int("attempt", attempt),
			log.Err(err),
		)

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.retryInterval):
		}
	}
}
