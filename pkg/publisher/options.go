package publisher

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/log"
)

// Defaults for publishers and workers.
const (
	DefaultUpdateFunction = ".u.upd"
	DefaultResetAfter     = 30 * time.Minute
	DefaultIdleInterval   = 10 * time.Millisecond
)

// Option configures a Publisher.
type Option func(*options)

type options struct {
	logger     log.Logger
	clock      clock.Clock
	updateFn   string
	resetAfter time.Duration
	connOpts   []connection.Option
}

func defaultOptions() options {
	return options{
		logger:     log.NewNoopLogger(),
		clock:      clock.New(),
		updateFn:   DefaultUpdateFunction,
		resetAfter: DefaultResetAfter,
	}
}

// WithLogger sets the logger for the publisher and its connection.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
			o.connOpts = append(o.connOpts, connection.WithLogger(logger))
		}
	}
}

// WithClock sets the clock used for the reset policy and retry waits.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		if clk != nil {
			o.clock = clk
			o.connOpts = append(o.connOpts, connection.WithClock(clk))
		}
	}
}

// WithUpdateFunction overrides the remote function tables are sent to.
func WithUpdateFunction(fn string) Option {
	return func(o *options) {
		if fn != "" {
			o.updateFn = fn
		}
	}
}

// WithResetAfter sets how long the connection may sit without a successful
// publish before it is reset ahead of the next one. Zero disables resets.
func WithResetAfter(d time.Duration) Option {
	return func(o *options) { o.resetAfter = d }
}

// WithReconnectInterval sets the pause between reconnect attempts.
func WithReconnectInterval(d time.Duration) Option {
	return func(o *options) {
		o.connOpts = append(o.connOpts, connection.WithReconnectInterval(d))
	}
}

// WithRetryPolicy replaces the reconnect policy.
func WithRetryPolicy(p connection.RetryPolicy) Option {
	return func(o *options) {
		o.connOpts = append(o.connOpts, connection.WithRetryPolicy(p))
	}
}

// WorkerOption configures a Worker.
type WorkerOption func(*workerOptions)

type workerOptions struct {
	logger   log.Logger
	clock    clock.Clock
	idle     time.Duration
	observer WorkerObserver
}

func defaultWorkerOptions() workerOptions {
	return workerOptions{
		logger: log.NewNoopLogger(),
		clock:  clock.New(),
		idle:   DefaultIdleInterval,
	}
}

// WithWorkerLogger sets the worker's logger.
func WithWorkerLogger(logger log.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkerClock sets the clock used for idle waits.
func WithWorkerClock(clk clock.Clock) WorkerOption {
	return func(o *workerOptions) {
		if clk != nil {
			o.clock = clk
		}
	}
}

// WithIdleInterval sets how long the worker sleeps when its queue is empty
// and between retries of a failing head.
func WithIdleInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) {
		if d > 0 {
			o.idle = d
		}
	}
}

// WithWorkerObserver sets the observer for worker state changes.
func WithWorkerObserver(obs WorkerObserver) WorkerOption {
	return func(o *workerOptions) { o.observer = obs }
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerOptions)

type managerOptions struct {
	logger     log.Logger
	factory    WorkerFactory
	pubOpts    []Option
	workerOpts []WorkerOption
}

// WithManagerLogger sets the manager's logger. It is also handed to the
// publishers and workers built by the default factory.
func WithManagerLogger(logger log.Logger) ManagerOption {
	return func(o *managerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkerFactory replaces how a worker is built for a new target.
func WithWorkerFactory(f WorkerFactory) ManagerOption {
	return func(o *managerOptions) { o.factory = f }
}

// WithPublisherOptions sets options for publishers built by the default factory.
func WithPublisherOptions(opts ...Option) ManagerOption {
	return func(o *managerOptions) { o.pubOpts = append(o.pubOpts, opts...) }
}

// WithWorkerOptions sets options for workers built by the default factory.
func WithWorkerOptions(opts ...WorkerOption) ManagerOption {
	return func(o *managerOptions) { o.workerOpts = append(o.workerOpts, opts...) }
}
