package subscriber

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/log"
)

// Protocol defaults.
const (
	DefaultSubscribeFunction = ".u.sub"
)

// DefaultUpdateFunctions are the function names that mark a table update.
var DefaultUpdateFunctions = []string{"upd", ".u.upd"}

// Option configures a Subscriber.
type Option func(*options)

type options struct {
	logger          log.Logger
	tableConsumer   TableConsumer
	rawConsumer     RawConsumer
	failureListener FailureListener
	observer        StateObserver
	subscribeFn     string
	updateFns       []string
	connOpts        []connection.Option
}

func defaultOptions() options {
	return options{
		logger:      log.NewNoopLogger(),
		subscribeFn: DefaultSubscribeFunction,
		updateFns:   DefaultUpdateFunctions,
	}
}

// WithLogger sets the logger for the subscriber and its connection.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
			o.connOpts = append(o.connOpts, connection.WithLogger(logger))
		}
	}
}

// WithTableConsumer sets the consumer for snapshot and update tables.
func WithTableConsumer(c TableConsumer) Option {
	return func(o *options) { o.tableConsumer = c }
}

// WithRawConsumer sets the consumer for every inbound message.
func WithRawConsumer(c RawConsumer) Option {
	return func(o *options) { o.rawConsumer = c }
}

// WithFailureListener sets the listener for fatal failures.
func WithFailureListener(l FailureListener) Option {
	return func(o *options) { o.failureListener = l }
}

// WithStateObserver sets the observer for state changes.
func WithStateObserver(obs StateObserver) Option {
	return func(o *options) { o.observer = obs }
}

// WithSubscribeFunction overrides the remote subscribe function name.
func WithSubscribeFunction(fn string) Option {
	return func(o *options) {
		if fn != "" {
			o.subscribeFn = fn
		}
	}
}

// WithUpdateFunctions overrides the function names recognized as table updates.
func WithUpdateFunctions(fns ...string) Option {
	return func(o *options) {
		if len(fns) > 0 {
			o.updateFns = fns
		}
	}
}

// WithReconnectInterval sets the pause between reconnect and resubscribe attempts.
func WithReconnectInterval(d time.Duration) Option {
	return func(o *options) {
		o.connOpts = append(o.connOpts, connection.WithReconnectInterval(d))
	}
}

// WithRetryPolicy replaces the reconnect and resubscribe policy.
func WithRetryPolicy(p connection.RetryPolicy) Option {
	return func(o *options) {
		o.connOpts = append(o.connOpts, connection.WithRetryPolicy(p))
	}
}

// WithClock sets the clock used for retry waits.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		o.connOpts = append(o.connOpts, connection.WithClock(clk))
	}
}
