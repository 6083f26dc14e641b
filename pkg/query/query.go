package query

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/log"
	"github.com/bft-labs/tickfeed/pkg/table"
)

// Querier runs queries over one connection. Queries are serialized, so a
// Querier may be shared between goroutines.
type Querier struct {
	mu     sync.Mutex
	conn   *connection.Connection
	clock  clock.Clock
	logger log.Logger
}

// New connects to target and returns a Querier. Connection failures wrap
// domain.ErrTargetUnavailable.
func New(ctx context.Context, target domain.Target, dialer ports.Dialer, opts ...Option) (*Querier, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return FromConnection(ctx, connection.New(target, dialer, o.connOpts...), opts...)
}

// FromConnection returns a Querier that takes over conn, connecting it first
// when it is not open. Connection options in opts are ignored; conn keeps
// its own.
func FromConnection(ctx context.Context, conn *connection.Connection, opts ...Option) (*Querier, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: nil connection", domain.ErrInvalidArgument)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return &Querier{conn: conn, clock: o.clock, logger: o.logger}, nil
}

// Target returns the remote process queries run against.
func (q *Querier) Target() domain.Target { return q.conn.Target() }

// IsConnected reports whether the underlying connection is open.
func (q *Querier) IsConnected() bool { return q.conn.IsConnected() }

// Close closes the connection. A later query reconnects.
func (q *Querier) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.conn.Disconnect()
}

// Query calls fn with args and returns its result.
func (q *Querier) Query(ctx context.Context, fn string, args ...any) (any, error) {
	return q.run(ctx, "sync", fn, func() (any, error) {
		return q.conn.Call(fn, args...)
	})
}

// QueryAsync sends fn with args and returns the next message the remote
// process sends back.
func (q *Querier) QueryAsync(ctx context.Context, fn string, args ...any) (any, error) {
	return q.run(ctx, "async", fn, func() (any, error) {
		if err := q.conn.Send(fn, args...); err != nil {
			return nil, err
		}
		return q.conn.Receive()
	})
}

// QueryTable runs Query and converts the result into a table called name.
// A nil result yields a nil table.
func (q *Querier) QueryTable(ctx context.Context, name, fn string, args ...any) (*table.Table, error) {
	res, err := q.Query(ctx, fn, args...)
	if err != nil {
		return nil, err
	}
	t, err := table.FromObjectNamed(name, res)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrQueryFailed, fn, err)
	}
	return t, nil
}

func (q *Querier) run(ctx context.Context, mode, fn string, call func() (any, error)) (any, error) {
	if fn == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidArgument)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	target := q.conn.Target()
	if !q.conn.IsConnected() {
		q.logger.Warn("query connection down, reconnecting", log.Stringer("target", target))
		if err := q.conn.Reconnect(ctx); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrQueryFailed, target, err)
		}
	}

	start := q.clock.Now()
	res, err := call()
	if err != nil {
		if errors.Is(err, domain.ErrIO) {
			q.logger.Error("query lost connection", log.Stringer("target", target), log.String("mode", mode), log.Err(err))
			q.conn.Disconnect()
		} else {
			q.logger.Error("query failed", log.Stringer("target", target), log.String("mode", mode), log.Err(err))
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrQueryFailed, target, err)
	}

	q.logger.Debug("query ok",
		log.Stringer("target", target),
		log.String("mode", mode),
		log.Duration("took", q.clock.Since(start)),
	)
	return res, nil
}
