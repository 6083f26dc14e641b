package tcp

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
	"github.com/bft-labs/tickfeed/pkg/log"
)

// DefaultDialTimeout bounds the TCP connect and the login exchange.
const DefaultDialTimeout = 10 * time.Second

// Dialer opens tcp handles.
type Dialer struct {
	timeout time.Duration
	maxSize uint32
	logger  log.Logger
}

var _ ports.Dialer = (*Dialer)(nil)

// Option configures a Dialer.
type Option func(*Dialer)

// WithDialTimeout sets the connect and login timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(dl *Dialer) {
		if d > 0 {
			dl.timeout = d
		}
	}
}

// WithMaxMessageSize sets the largest frame accepted or sent.
func WithMaxMessageSize(n uint32) Option {
	return func(dl *Dialer) {
		if n > 0 {
			dl.maxSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Option {
	return func(dl *Dialer) {
		if l != nil {
			dl.logger = l
		}
	}
}

// NewDialer returns a Dialer.
func NewDialer(opts ...Option) *Dialer {
	d := &Dialer{
		timeout: DefaultDialTimeout,
		maxSize: DefaultMaxMessageSize,
		logger:  log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial connects to target and performs the login exchange.
func (d *Dialer) Dial(ctx context.Context, target domain.Target) (ports.Handle, error) {
	nd := net.Dialer{Timeout: d.timeout}
	conn, err := nd.DialContext(ctx, "tcp", target.Address())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTargetUnavailable, err)
	}

	h := newHandle(conn, d.maxSize, uuid.NewString(), d.logger)
	if err := d.login(h, target); err != nil {
		_ = h.Close()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTargetUnavailable, target, err)
	}

	d.logger.Debug("tcp handle open",
		log.String("conn_id", h.connID),
		log.Stringer("target", target),
		log.String("local", conn.LocalAddr().String()),
	)
	return h, nil
}

func (d *Dialer) login(h *handle, target domain.Target) error {
	if err := h.conn.SetDeadline(time.Now().Add(d.timeout)); err != nil {
		return err
	}
	defer h.conn.SetDeadline(time.Time{})

	if err := h.write(MsgLogin, target.Credentials()); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	t, body, err := h.read()
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if t == MsgError {
		return fmt.Errorf("login rejected: %v", body)
	}
	if ok, _ := body.(bool); t != MsgResponse || !ok {
		return fmt.Errorf("login: unexpected %s reply %v", t, body)
	}
	return nil
}
