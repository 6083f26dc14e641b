package subscriber

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/log"
	"github.com/bft-labs/tickfeed/pkg/table"
)

// Subscriber streams tables from one remote process.
type Subscriber struct {
	conn *connection.Connection
	sub  Subscription

	subscribeFn string
	updateFns   map[string]struct{}

	tableConsumer   TableConsumer
	rawConsumer     RawConsumer
	failureListener FailureListener
	observer        StateObserver
	logger          log.Logger

	state atomic.Int32

	started atomic.Bool
	done    chan struct{}
	err     error
}

// New connects to target and returns a Subscriber ready to subscribe. At
// least one of a table or raw consumer is required, and a Config
// subscription needs a non-empty dictionary. Connection failures
// wrap domain.ErrTargetUnavailable and are reported to the failure listener.
func New(ctx context.Context, target domain.Target, dialer ports.Dialer, sub Subscription, opts ...Option) (*Subscriber, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.tableConsumer == nil && o.rawConsumer == nil {
		return nil, fmt.Errorf("%w: no consumer registered", domain.ErrInvalidArgument)
	}
	if err := sub.validate(); err != nil {
		return nil, err
	}

	s := &Subscriber{
		conn:            connection.New(target, dialer, o.connOpts...),
		sub:             sub,
		subscribeFn:     o.subscribeFn,
		updateFns:       make(map[string]struct{}, len(o.updateFns)),
		tableConsumer:   o.tableConsumer,
		rawConsumer:     o.rawConsumer,
		failureListener: o.failureListener,
		observer:        o.observer,
		logger:          o.logger,
		done:            make(chan struct{}),
	}
	for _, fn := range o.updateFns {
		s.updateFns[fn] = struct{}{}
	}

	if err := s.conn.Connect(ctx); err != nil {
		s.logger.Error("subscriber connect failed", log.Stringer("target", target), log.Err(err))
		s.notify(FailureConnection, err)
		return nil, err
	}
	s.setState(StateConnected)
	return s, nil
}

// State returns the current state.
func (s *Subscriber) State() State { return State(s.state.Load()) }

// Target returns the remote process this subscriber reads from.
func (s *Subscriber) Target() domain.Target { return s.conn.Target() }

// Subscription returns the configured subscription.
func (s *Subscriber) Subscription() Subscription { return s.sub }

// Subscribe sends the subscription request and replays any snapshot in the
// response to the table consumer. A true or dictionary response is success;
// anything else, or a transport error, wraps domain.ErrSubscriptionFailed.
func (s *Subscriber) Subscribe(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.conn.Call(s.subscribeFn, s.sub.args()...)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrSubscriptionFailed, s.sub, err)
	}

	switch r := res.(type) {
	case *table.WireDict:
		s.replaySnapshot(r)
	case table.WireDict:
		s.replaySnapshot(&r)
	case bool:
		if !r {
			return fmt.Errorf("%w: %s: remote returned false", domain.ErrSubscriptionFailed, s.sub)
		}
	default:
		return fmt.Errorf("%w: %s: unexpected response %T", domain.ErrSubscriptionFailed, s.sub, res)
	}

	s.setState(StateSubscribed)
	s.logger.Info("subscribed",
		log.Stringer("target", s.conn.Target()),
		log.Stringer("subscription", s.sub),
	)
	return nil
}

// SubscribeAndListen subscribes and, on success, listens until the
// connection is lost for good or ctx is done.
func (s *Subscriber) SubscribeAndListen(ctx context.Context) error {
	if err := s.Subscribe(ctx); err != nil {
		s.logger.Error("subscription rejected", log.Stringer("target", s.conn.Target()), log.Err(err))
		if errors.Is(err, domain.ErrSubscriptionFailed) {
			s.notify(FailureSubscription, err)
		}
		return err
	}
	return s.Listen(ctx)
}

// Listen receives and dispatches messages while connected. Decode and
// protocol errors drop the message; I/O errors trigger Reconnect. It returns
// ctx.Err() once ctx is done, or nil when the connection ends without a
// reconnect.
func (s *Subscriber) Listen(ctx context.Context) error {
	stop := context.AfterFunc(ctx, s.conn.Interrupt)
	defer stop()

	s.setState(StateListening)
	for s.conn.IsConnected() {
		msg, err := s.conn.Receive()
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.setState(StateDisconnected)
			s.conn.Disconnect()
			return ctxErr
		}
		if err != nil {
			if errors.Is(err, domain.ErrDecode) || errors.Is(err, domain.ErrProtocol) {
				s.logger.Warn("dropping unreadable message", log.Stringer("target", s.conn.Target()), log.Err(err))
				continue
			}
			s.logger.Warn("connection lost, reconnecting", log.Stringer("target", s.conn.Target()), log.Err(err))
			if err := s.Reconnect(ctx); err != nil {
				s.setState(StateDisconnected)
				return err
			}
			continue
		}
		if msg == nil {
			continue
		}
		s.dispatch(msg)
	}

	s.setState(StateDisconnected)
	s.logger.Warn("listen loop exited", log.Stringer("target", s.conn.Target()))
	return nil
}

// Reconnect re-establishes the connection and then resubscribes, retrying
// both on the connection's retry policy until they succeed.
func (s *Subscriber) Reconnect(ctx context.Context) error {
	s.setState(StateReconnecting)
	if err := s.conn.Reconnect(ctx); err != nil {
		return err
	}
	s.setState(StateConnected)

	err := s.conn.Retry(ctx, func(attempt int) error {
		if err := s.conn.Connect(ctx); err != nil {
			return err
		}
		err := s.Subscribe(ctx)
		if err != nil {
			s.logger.Warn("resubscribe failed",
				log.Stringer("target", s.conn.Target()),
				log.Int("attempt", attempt),
				log.Err(err),
			)
		}
		return err
	})
	if err != nil {
		return err
	}
	s.setState(StateListening)
	return nil
}

// Start runs SubscribeAndListen on its own goroutine. Cancel ctx to stop it.
func (s *Subscriber) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer close(s.done)
		s.err = s.SubscribeAndListen(ctx)
	}()
}

// Done is closed when the goroutine launched by Start returns.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Err returns the result of the goroutine launched by Start once Done is closed.
func (s *Subscriber) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Close disconnects. It must not be called while Listen is running.
func (s *Subscriber) Close() {
	s.conn.Disconnect()
	s.setState(StateDisconnected)
}

func (s *Subscriber) replaySnapshot(snap *table.WireDict) {
	if len(snap.Keys) != len(snap.Values) {
		s.logger.Warn("malformed snapshot", log.Int("keys", len(snap.Keys)), log.Int("values", len(snap.Values)))
		return
	}
	for i, key := range snap.Keys {
		name, ok := key.(string)
		if !ok {
			s.logger.Warn("snapshot key is not a table name", log.Any("key", key))
			continue
		}
		flip, ok := asFlip(snap.Values[i])
		if !ok {
			s.logger.Warn("snapshot value is not a table", log.String("table", name))
			continue
		}
		t, err := table.FromWire(name, flip)
		if err != nil {
			s.logger.Warn("snapshot table unreadable", log.String("table", name), log.Err(err))
			continue
		}
		s.logger.Info("snapshot received", log.String("table", name), log.Int("rows", t.RowCount()))
		s.deliverTable(t)
	}
}

func (s *Subscriber) dispatch(msg any) {
	if s.rawConsumer != nil {
		if err := safeCall(func() error { return s.rawConsumer.ConsumeRaw(msg) }); err != nil {
			s.logger.Error("raw consumer failed", log.Err(fmt.Errorf("%w: %w", domain.ErrDataConsumer, err)))
		}
	}

	t, ok := s.tableUpdate(msg)
	if !ok {
		return
	}
	s.deliverTable(t)
}

// tableUpdate recognizes [updateFunction, tableName, wireTable].
func (s *Subscriber) tableUpdate(msg any) (*table.Table, bool) {
	parts, ok := msg.([]any)
	if !ok || len(parts) != 3 {
		s.logger.Debug("not a table update", log.String("type", fmt.Sprintf("%T", msg)))
		return nil, false
	}
	fn, ok := parts[0].(string)
	if !ok {
		s.logger.Debug("not a table update: function is not a name")
		return nil, false
	}
	if _, ok := s.updateFns[fn]; !ok {
		s.logger.Debug("not a table update", log.String("function", fn))
		return nil, false
	}
	name, ok := parts[1].(string)
	if !ok {
		s.logger.Debug("not a table update: table is not a name", log.String("function", fn))
		return nil, false
	}
	flip, ok := asFlip(parts[2])
	if !ok {
		s.logger.Debug("not a table update: payload is not a table", log.String("table", name))
		return nil, false
	}
	t, err := table.FromWire(name, flip)
	if err != nil {
		s.logger.Warn("table update unreadable", log.String("table", name), log.Err(err))
		return nil, false
	}
	return t, true
}

func (s *Subscriber) deliverTable(t *table.Table) {
	if s.tableConsumer == nil {
		return
	}
	if err := safeCall(func() error { return s.tableConsumer.ConsumeTable(t) }); err != nil {
		s.logger.Error("table consumer failed",
			log.String("table", t.Name()),
			log.Err(fmt.Errorf("%w: %w", domain.ErrDataConsumer, err)),
		)
	}
}

func (s *Subscriber) setState(next State) {
	prev := State(s.state.Swap(int32(next)))
	if prev == next {
		return
	}
	s.logger.Debug("state transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
	)
	if s.observer != nil {
		s.observer.OnStateChange(prev, next)
	}
}

func (s *Subscriber) notify(kind Failure, err error) {
	if s.failureListener != nil {
		s.failureListener.OnFailure(kind, err)
	}
}

func asFlip(v any) (*table.Flip, bool) {
	switch f := v.(type) {
	case *table.Flip:
		return f, f != nil
	case table.Flip:
		return &f, true
	default:
		return nil, false
	}
}

func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
