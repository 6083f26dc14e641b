package query

import (
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/log"
)

// Option configures a Querier.
type Option func(*options)

type options struct {
	logger   log.Logger
	clock    clock.Clock
	connOpts []connection.Option
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
		clock:  clock.New(),
	}
}

// WithLogger sets the logger for the querier and its connection.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
			o.connOpts = append(o.connOpts, connection.WithLogger(logger))
		}
	}
}

// WithClock sets the clock used for query timing and reconnect waits.
func WithClock(clk clock.Clock) Option {
	return func(o *options) {
		if clk != nil {
			o.clock = clk
			o.connOpts = append(o.connOpts, connection.WithClock(clk))
		}
	}
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
