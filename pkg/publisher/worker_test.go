package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/fakes"
	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/table"
)

type attemptLog struct {
	mu    sync.Mutex
	names []string
}

func (l *attemptLog) add(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
	n := 0
	for _, seen := range l.names {
		if seen == name {
			n++
		}
	}
	return n
}

func (l *attemptLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

type workerStates struct {
	mu   sync.Mutex
	seen []WorkerState
}

func (s *workerStates) OnStateChange(_, current WorkerState) {
	s.mu.Lock()
	s.seen = append(s.seen, current)
	s.mu.Unlock()
}

func (s *workerStates) all() []WorkerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]WorkerState(nil), s.seen...)
}

func sentNames(h *fakes.Handle) []string {
	var names []string
	for _, s := range h.Sends() {
		names = append(names, s.Args[0].(string))
	}
	return names
}

func startWorker(t *testing.T, h *fakes.Handle, pubOpts []Option, opts ...WorkerOption) (*Worker, *fakes.Dialer) {
	t.Helper()
	d := fakes.NewDialer(h)
	p := newPublisher(t, d, pubOpts...)
	w := StartWorker(context.Background(), p, append([]WorkerOption{WithIdleInterval(time.Millisecond)}, opts...)...)
	t.Cleanup(func() { _ = w.Disconnect() })
	return w, d
}

func TestWorkerRetriesHeadInOrder(t *testing.T) {
	attempts := &attemptLog{}
	h := fakes.NewHandle()
	h.SendFunc = func(fn string, args ...any) error {
		name := args[0].(string)
		if attempts.add(name) == 1 && name == "first" {
			return errors.New("transient encode failure")
		}
		return nil
	}
	w, _ := startWorker(t, h, nil)

	require.NoError(t, w.Enqueue(tradeTable(t, "first"), tradeTable(t, "second"), tradeTable(t, "third")))

	require.Eventually(t, func() bool { return len(h.Sends()) == 3 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, []string{"first", "second", "third"}, sentNames(h))
	assert.Equal(t, []string{"first", "first", "second", "third"}, attempts.all())
	assert.Equal(t, 0, w.Len())
}

func TestWorkerSkipsNilAndAcceptsWire(t *testing.T) {
	h := fakes.NewHandle()
	w, _ := startWorker(t, h, nil)

	require.NoError(t, w.Enqueue(nil, tradeTable(t, "trade")))
	require.NoError(t, w.EnqueueWire("quote", &table.Flip{Columns: []string{"bid"}, Data: []any{[]any{1.0}}}))

	require.Eventually(t, func() bool { return len(h.Sends()) == 2 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, []string{"trade", "quote"}, sentNames(h))
}

func TestWorkerDisconnect(t *testing.T) {
	h := fakes.NewHandle()
	states := &workerStates{}
	w, _ := startWorker(t, h, nil, WithWorkerObserver(states))

	require.NoError(t, w.Enqueue(tradeTable(t, "trade")))
	require.Eventually(t, func() bool { return len(h.Sends()) == 1 }, 2*time.Second, time.Millisecond)

	assert.NoError(t, w.Disconnect())
	assert.Equal(t, WorkerDead, w.State())
	assert.True(t, h.Closed())
	assert.ErrorIs(t, w.Enqueue(tradeTable(t, "late")), domain.ErrWorkerDead)
	assert.Contains(t, states.all(), WorkerDraining)
	assert.Equal(t, WorkerDead, states.all()[len(states.all())-1])
}

func TestWorkerDiesWhenConnectionLost(t *testing.T) {
	h := fakes.NewHandle()
	h.SendFunc = func(string, ...any) error { return fmt.Errorf("%w: reset by peer", domain.ErrIO) }
	w, d := startWorker(t, h, []Option{
		WithRetryPolicy(connection.RetryPolicy{Interval: time.Millisecond, MaxAttempts: 2}),
	})
	d.FailNext(2)

	require.NoError(t, w.Enqueue(tradeTable(t, "a"), tradeTable(t, "b")))

	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker kept running without a connection")
	}
	assert.ErrorIs(t, w.Err(), domain.ErrWorkerDead)
	assert.Equal(t, WorkerDead, w.State())
	assert.Equal(t, 0, w.Len())
	assert.ErrorIs(t, w.Enqueue(tradeTable(t, "c")), domain.ErrWorkerDead)
	assert.ErrorIs(t, w.Disconnect(), domain.ErrWorkerDead)
}

func TestWorkerStopsWithContext(t *testing.T) {
	p := newPublisher(t, fakes.NewDialer())
	ctx, cancel := context.WithCancel(context.Background())
	w := StartWorker(ctx, p, WithIdleInterval(time.Millisecond))

	cancel()
	select {
	case <-w.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("worker ignored cancellation")
	}
	assert.NoError(t, w.Err())
	assert.False(t, p.IsConnected())
}

func TestWorkerStateString(t *testing.T) {
	assert.Equal(t, "idle", WorkerIdle.String())
	assert.Equal(t, "draining", WorkerDraining.String())
	assert.Equal(t, "dead", WorkerDead.String())
	assert.Equal(t, "WorkerState(7)", WorkerState(7).String())
}
