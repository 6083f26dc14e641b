package tcp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
	"github.com/bft-labs/tickfeed/pkg/log"
)

// handle is a client-side ports.Handle over one TCP connection.
type handle struct {
	conn   net.Conn
	framer *framer
	connID string
	logger log.Logger

	open atomic.Bool

	// Guards pending; inbound async messages read while a Call waits for
	// its response are parked here for Receive.
	mu      sync.Mutex
	pending []any
}

var _ ports.Handle = (*handle)(nil)

func newHandle(conn net.Conn, maxSize uint32, connID string, logger log.Logger) *handle {
	h := &handle{
		conn:   conn,
		framer: newFramer(conn, maxSize),
		connID: connID,
		logger: logger,
	}
	h.open.Store(true)
	return h
}

func (h *handle) Open() bool { return h.open.Load() }

func (h *handle) Close() error {
	h.open.Store(false)
	return h.conn.Close()
}

func (h *handle) Send(fn string, args ...any) error {
	return h.write(MsgAsync, request(fn, args))
}

func (h *handle) Call(fn string, args ...any) (any, error) {
	if err := h.write(MsgSync, request(fn, args)); err != nil {
		return nil, err
	}
	for {
		t, body, err := h.read()
		if err != nil {
			return nil, err
		}
		switch t {
		case MsgResponse:
			return body, nil
		case MsgError:
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrProtocol, fn, body)
		case MsgAsync, MsgSync:
			h.mu.Lock()
			h.pending = append(h.pending, body)
			h.mu.Unlock()
		default:
			return nil, fmt.Errorf("%w: unexpected %s frame awaiting response", domain.ErrProtocol, t)
		}
	}
}

func (h *handle) Receive() (any, error) {
	h.mu.Lock()
	if len(h.pending) > 0 {
		msg := h.pending[0]
		h.pending = h.pending[1:]
		h.mu.Unlock()
		return msg, nil
	}
	h.mu.Unlock()

	t, body, err := h.read()
	if err != nil {
		return nil, err
	}
	switch t {
	case MsgAsync, MsgSync:
		return body, nil
	case MsgError:
		return nil, fmt.Errorf("%w: remote error: %v", domain.ErrProtocol, body)
	default:
		return nil, fmt.Errorf("%w: unexpected %s frame", domain.ErrProtocol, t)
	}
}

func (h *handle) write(t MessageType, body any) error {
	if !h.Open() {
		return fmt.Errorf("%w: connection closed", domain.ErrIO)
	}
	payload, err := encodeMessage(t, body)
	if err != nil {
		// Unencodable arguments are a local failure; the channel is intact.
		return fmt.Errorf("encode %s message: %w", t, err)
	}
	if err := h.framer.writeFrame(payload); err != nil {
		if errors.Is(err, ErrMessageTooLarge) {
			return err
		}
		h.broken(err)
		return fmt.Errorf("%w: %w", domain.ErrIO, err)
	}
	return nil
}

// read returns the next frame, classifying failures as I/O, protocol or
// decode errors.
func (h *handle) read() (MessageType, any, error) {
	if !h.Open() {
		return 0, nil, fmt.Errorf("%w: connection closed", domain.ErrIO)
	}
	payload, err := h.framer.readFrame()
	switch {
	case err == nil:
	case errors.Is(err, ErrMessageEmpty):
		return 0, nil, fmt.Errorf("%w: %w", domain.ErrProtocol, err)
	default:
		// Truncated or oversized frames leave the stream unaligned.
		h.broken(err)
		return 0, nil, fmt.Errorf("%w: %w", domain.ErrIO, err)
	}

	t, body, err := decodeMessage(payload)
	if err != nil {
		return t, nil, fmt.Errorf("%w: %s frame: %w", domain.ErrDecode, t, err)
	}
	return t, body, nil
}

func (h *handle) broken(err error) {
	if h.open.Swap(false) {
		lvl := h.logger.Warn
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			lvl = h.logger.Debug
		}
		lvl("connection lost", log.String("conn_id", h.connID), log.Err(err))
		_ = h.conn.Close()
	}
}

func request(fn string, args []any) []any {
	msg := make([]any, 0, len(args)+1)
	msg = append(msg, fn)
	return append(msg, args...)
}
