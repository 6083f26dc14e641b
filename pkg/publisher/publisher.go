package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/hashicorp/go-multierror"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/log"
	"github.com/bft-labs/tickfeed/pkg/table"
)

// Publisher sends tables to one remote process. It is not safe for
// concurrent use; a Worker gives it a single owner.
type Publisher struct {
	conn       *connection.Connection
	updateFn   string
	resetAfter time.Duration
	clock      clock.Clock
	logger     log.Logger

	lastPublish time.Time
}

// New connects to target and returns a Publisher.
func New(ctx context.Context, target domain.Target, dialer ports.Dialer, opts ...Option) (*Publisher, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &Publisher{
		conn:       connection.New(target, dialer, o.connOpts...),
		updateFn:   o.updateFn,
		resetAfter: o.resetAfter,
		clock:      o.clock,
		logger:     o.logger,
	}
	if err := p.conn.Connect(ctx); err != nil {
		return nil, err
	}
	p.lastPublish = p.clock.Now()
	return p, nil
}

// Target returns the remote process this publisher sends to.
func (p *Publisher) Target() domain.Target { return p.conn.Target() }

// IsConnected reports whether the underlying connection is open.
func (p *Publisher) IsConnected() bool { return p.conn.IsConnected() }

// Disconnect closes the connection.
func (p *Publisher) Disconnect() { p.conn.Disconnect() }

// Publish sends flip as an update for table name. An empty name or nil data
// is a no-op that reports success.
//
// The connection is reset first when nothing was published successfully for
// longer than the reset interval, and reopened when it is down. A send that
// fails with an I/O error reopens the connection and reports the failure;
// any other send failure is reported without touching the connection.
func (p *Publisher) Publish(ctx context.Context, name string, flip *table.Flip) error {
	if name == "" || flip == nil {
		return nil
	}

	if p.resetAfter > 0 {
		if idle := p.clock.Since(p.lastPublish); idle > p.resetAfter {
			p.logger.Info("resetting idle connection",
				log.Stringer("target", p.conn.Target()),
				log.Duration("idle", idle),
			)
			if err := p.conn.Reconnect(ctx); err != nil {
				return err
			}
		}
	}
	if !p.conn.IsConnected() {
		if err := p.conn.Reconnect(ctx); err != nil {
			return err
		}
	}

	err := p.send(name, flip)
	if err == nil {
		p.lastPublish = p.clock.Now()
		return nil
	}

	if !errors.Is(err, domain.ErrIO) {
		p.logger.Error("publish failed", log.String("table", name), log.Err(err))
		return err
	}

	p.logger.Warn("publish lost connection, reconnecting",
		log.Stringer("target", p.conn.Target()),
		log.String("table", name),
		log.Err(err),
	)
	if rerr := p.conn.Reconnect(ctx); rerr != nil {
		return multierror.Append(err, rerr)
	}
	return err
}

// PublishTable sends t under its own name. A table without columns has no
// wire form and is a successful no-op.
func (p *Publisher) PublishTable(ctx context.Context, t *table.Table) error {
	if t == nil {
		return fmt.Errorf("%w: nil table", domain.ErrInvalidArgument)
	}
	flip, _ := t.ToWire()
	return p.Publish(ctx, t.Name(), flip)
}

// PublishTables sends each table in order with its own call and returns one
// result per table.
func (p *Publisher) PublishTables(ctx context.Context, tables []*table.Table) []error {
	errs := make([]error, len(tables))
	for i, t := range tables {
		errs[i] = p.PublishTable(ctx, t)
	}
	return errs
}

func (p *Publisher) send(name string, flip *table.Flip) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send %s: panic: %v", name, r)
		}
	}()
	return p.conn.Send(p.updateFn, name, flip)
}
