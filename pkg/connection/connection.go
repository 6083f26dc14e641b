package connection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
	"github.com/bft-labs/tickfeed/pkg/log"
)

// Connection owns at most one live handle to a target.
type Connection struct {
	target domain.Target
	dialer ports.Dialer

	// Only Interrupt reads handle from outside the owning goroutine.
	mu     sync.Mutex
	handle ports.Handle

	logger log.Logger
	clock  clock.Clock
	retry  RetryPolicy
}

// New returns a disconnected Connection bound to target.
func New(target domain.Target, dialer ports.Dialer, opts ...Option) *Connection {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Connection{
		target: target,
		dialer: dialer,
		logger: o.logger,
		clock:  o.clock,
		retry:  o.retry,
	}
}

// Target returns the target this connection is bound to.
func (c *Connection) Target() domain.Target { return c.target }

// Clock returns the clock used for waits.
func (c *Connection) Clock() clock.Clock { return c.clock }

// RetryPolicy returns the reconnect policy.
func (c *Connection) RetryPolicy() RetryPolicy { return c.retry }

func (c *Connection) current() ports.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

func (c *Connection) swap(h ports.Handle) ports.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	old := c.handle
	c.handle = h
	return old
}

// IsConnected reports whether a handle is present and open.
func (c *Connection) IsConnected() bool {
	h := c.current()
	return h != nil && h.Open()
}

// Connect opens a handle unless one is already open. Failures wrap
// domain.ErrTargetUnavailable.
func (c *Connection) Connect(ctx context.Context) error {
	if c.IsConnected() {
		return nil
	}
	if c.current() != nil {
		// Half-open handle left behind by a failed channel.
		c.Disconnect()
	}
	if c.target.Host == "" || c.dialer == nil {
		return fmt.Errorf("%w: no target configured", domain.ErrTargetUnavailable)
	}

	h, err := c.dialer.Dial(ctx, c.target)
	if err != nil {
		if errors.Is(err, domain.ErrTargetUnavailable) {
			return fmt.Errorf("connect %s: %w", c.target, err)
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrTargetUnavailable, c.target, err)
	}
	if h == nil {
		return fmt.Errorf("%w: %s: dialer returned no handle", domain.ErrTargetUnavailable, c.target)
	}

	c.swap(h)
	c.logger.Info("connected", log.Stringer("target", c.target))
	return nil
}

// Disconnect closes the handle if present. Close errors are logged and swallowed.
func (c *Connection) Disconnect() {
	h := c.swap(nil)
	if h == nil {
		return
	}
	if err := h.Close(); err != nil {
		c.logger.Debug("close failed", log.Stringer("target", c.target), log.Err(err))
	}
	c.logger.Info("disconnected", log.Stringer("target", c.target))
}

// Interrupt closes the current handle without clearing it, unblocking a
// pending Receive with an I/O error. Unlike every other method it may be
// called from any goroutine.
func (c *Connection) Interrupt() {
	if h := c.current(); h != nil {
		_ = h.Close()
	}
}

// Reconnect disconnects and then retries Connect on the retry policy until
// it succeeds. With the default policy it only returns early when ctx is done.
func (c *Connection) Reconnect(ctx context.Context) error {
	c.Disconnect()
	return c.Retry(ctx, func(attempt int) error {
		err := c.Connect(ctx)
		if err != nil {
			c.logger.Warn("reconnect attempt failed",
				log.Stringer("target", c.target),
				log.Int("attempt", attempt),
				log.Duration("retry_in", c.retry.Interval),
				log.Err(err),
			)
		}
		return err
	})
}

// Retry runs fn on this connection's retry policy and clock.
func (c *Connection) Retry(ctx context.Context, fn func(attempt int) error) error {
	return c.retry.Do(ctx, c.clock, fn)
}

// Call invokes fn synchronously on the open handle.
func (c *Connection) Call(fn string, args ...any) (any, error) {
	h := c.current()
	if h == nil {
		return nil, errNotConnected(c.target)
	}
	return h.Call(fn, args...)
}

// Send invokes fn asynchronously on the open handle.
func (c *Connection) Send(fn string, args ...any) error {
	h := c.current()
	if h == nil {
		return errNotConnected(c.target)
	}
	return h.Send(fn, args...)
}

// Receive blocks for the next inbound message on the open handle.
func (c *Connection) Receive() (any, error) {
	h := c.current()
	if h == nil {
		return nil, errNotConnected(c.target)
	}
	return h.Receive()
}

func errNotConnected(t domain.Target) error {
	return fmt.Errorf("%w: %s: not connected", domain.ErrIO, t)
}
