package configwatcher

import (
	"time"

	"github.com/bft-labs/tickfeed/pkg/log"
)

// Defaults used by New.
const (
	DefaultRetryInterval = 5 * time.Second
	DefaultDebounceDelay = 100 * time.Millisecond
)

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithRetryInterval sets the delay between failed reloads.
func WithRetryInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.retryInterval = d
		}
	}
}

// WithDebounceDelay sets how long the file must stay quiet before a reload.
func WithDebounceDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounceDelay = d
		}
	}
}
