package connection

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/tickfeed/pkg/log"
)

// Option configures a Connection.
type Option func(*options)

type options struct {
	logger log.Logger
	clock  clock.Clock
	retry  RetryPolicy
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		clock:  clock.New(),
		retry:  DefaultRetryPolicy(),
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock sets the clock used for reconnect waits.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		if clk != nil {
			o.clock = clk
		}
	}
}

// WithRetryPolicy replaces the reconnect policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(o *options) {
		o.retry = p
	}
}

// WithReconnectInterval keeps the retry-forever policy but changes the
// pause between attempts.
func WithReconnectInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retry.Interval = d
		}
	}
}
