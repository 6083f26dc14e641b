// Package fakes provides in-memory implementations of the transport ports
// for tests.
package fakes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
)

// Invocation records one Call or Send.
type Invocation struct {
	Fn   string
	Args []any
}

type inbound struct {
	msg any
	err error
}

// Handle is a scriptable ports.Handle. Call returns true unless CallFunc is
// set; Send succeeds unless SendFunc is set. Receive blocks until a message
// is pushed or the handle is closed.
type Handle struct {
	CallFunc func(fn string, args ...any) (any, error)
	SendFunc func(fn string, args ...any) error

	mu     sync.Mutex
	open   bool
	calls  []Invocation
	sends  []Invocation
	inbox  chan inbound
	done   chan struct{}
	closed bool
}

// NewHandle returns an open handle.
func NewHandle() *Handle {
	return &Handle{
		open:  true,
		inbox: make(chan inbound, 64),
		done:  make(chan struct{}),
	}
}

// Push queues a message for Receive.
func (h *Handle) Push(msg any) { h.inbox <- inbound{msg: msg} }

// PushErr queues an error for Receive.
func (h *Handle) PushErr(err error) { h.inbox <- inbound{err: err} }

// Break marks the channel as failed without closing it.
func (h *Handle) Break() {
	h.mu.Lock()
	h.open = false
	h.mu.Unlock()
}

func (h *Handle) Call(fn string, args ...any) (any, error) {
	h.mu.Lock()
	h.calls = append(h.calls, Invocation{Fn: fn, Args: args})
	f := h.CallFunc
	h.mu.Unlock()
	if f != nil {
		return f(fn, args...)
	}
	return true, nil
}

func (h *Handle) Send(fn string, args ...any) error {
	h.mu.Lock()
	f := h.SendFunc
	h.mu.Unlock()
	if f != nil {
		if err := f(fn, args...); err != nil {
			return err
		}
	}
	h.mu.Lock()
	h.sends = append(h.sends, Invocation{Fn: fn, Args: args})
	h.mu.Unlock()
	return nil
}

func (h *Handle) Receive() (any, error) {
	select {
	case in := <-h.inbox:
		if errors.Is(in.err, domain.ErrIO) {
			h.Break()
		}
		return in.msg, in.err
	case <-h.done:
		return nil, fmt.Errorf("%w: handle closed", domain.ErrIO)
	}
}

func (h *Handle) Open() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.open
}

func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.open = false
	if !h.closed {
		h.closed = true
		close(h.done)
	}
	return nil
}

// Calls returns the recorded synchronous invocations.
func (h *Handle) Calls() []Invocation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Invocation(nil), h.calls...)
}

// Sends returns the recorded successful asynchronous invocations.
func (h *Handle) Sends() []Invocation {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Invocation(nil), h.sends...)
}

// Closed reports whether Close was called.
func (h *Handle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Dialer hands out queued handles, creating fresh ones when the queue is
// empty. FailNext makes upcoming dials fail with ErrTargetUnavailable.
type Dialer struct {
	mu       sync.Mutex
	queue    []*Handle
	issued   []*Handle
	failures int
	targets  []domain.Target
}

// NewDialer returns a dialer that hands out handles in order.
func NewDialer(handles ...*Handle) *Dialer {
	return &Dialer{queue: handles}
}

// FailNext makes the next n dials fail.
func (d *Dialer) FailNext(n int) {
	d.mu.Lock()
	d.failures = n
	d.mu.Unlock()
}

// Queue appends handles to be handed out by later dials.
func (d *Dialer) Queue(handles ...*Handle) {
	d.mu.Lock()
	d.queue = append(d.queue, handles...)
	d.mu.Unlock()
}

func (d *Dialer) Dial(ctx context.Context, target domain.Target) (ports.Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.targets = append(d.targets, target)
	if d.failures > 0 {
		d.failures--
		return nil, fmt.Errorf("%w: %s refused", domain.ErrTargetUnavailable, target)
	}
	var h *Handle
	if len(d.queue) > 0 {
		h, d.queue = d.queue[0], d.queue[1:]
	} else {
		h = NewHandle()
	}
	d.issued = append(d.issued, h)
	return h, nil
}

// Dials returns the number of dial attempts.
func (d *Dialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.targets)
}

// Issued returns the handles handed out so far.
func (d *Dialer) Issued() []*Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Handle(nil), d.issued...)
}

// Last returns the most recently issued handle, or nil.
func (d *Dialer) Last() *Handle {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.issued) == 0 {
		return nil
	}
	return d.issued[len(d.issued)-1]
}

var (
	_ ports.Handle = (*Handle)(nil)
	_ ports.Dialer = (*Dialer)(nil)
)
