package publisher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/pkg/log"
	"github.com/bft-labs/tickfeed/pkg/table"
)

// WorkerState is the lifecycle state of a Worker.
type WorkerState int32

const (
	// WorkerIdle means the queue is empty and the worker is waiting.
	WorkerIdle WorkerState = iota
	// WorkerDraining means the worker is sending the head of the queue.
	WorkerDraining
	// WorkerDead means the loop has exited; the queue is gone.
	WorkerDead
)

func (s WorkerState) String() string {
	switch s {
	case WorkerIdle:
		return "idle"
	case WorkerDraining:
		return "draining"
	case WorkerDead:
		return "dead"
	default:
		return fmt.Sprintf("WorkerState(%d)", int32(s))
	}
}

// WorkerObserver is notified of worker state changes on the worker's goroutine.
type WorkerObserver interface {
	OnStateChange(previous, current WorkerState)
}

// Worker drains a FIFO of tables into one Publisher. A table leaves the
// queue only after it was sent; a table that keeps failing holds back
// everything queued behind it.
//
// Enqueued tables are sent as they are when their turn comes, so callers
// must not mutate them afterwards.
type Worker struct {
	pub      *Publisher
	idle     time.Duration
	clock    clock.Clock
	logger   log.Logger
	observer WorkerObserver

	mu    sync.Mutex
	queue []*table.Table
	dead  bool

	state  atomic.Int32
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// StartWorker starts draining into pub on a new goroutine. The worker runs
// until ctx is done, Disconnect is called, or pub loses its connection for
// good. On exit the queue is discarded and pub is disconnected.
func StartWorker(ctx context.Context, pub *Publisher, opts ...WorkerOption) *Worker {
	o := defaultWorkerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx, cancel := context.WithCancel(ctx)
	w := &Worker{
		pub:      pub,
		idle:     o.idle,
		clock:    o.clock,
		logger:   o.logger,
		observer: o.observer,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go w.run(ctx)
	return w
}

// Target returns the remote process this worker publishes to.
func (w *Worker) Target() domain.Target { return w.pub.Target() }

// State returns the current state.
func (w *Worker) State() WorkerState { return WorkerState(w.state.Load()) }

// Enqueue appends tables to the queue. Nil tables are skipped. It fails
// with domain.ErrWorkerDead once the worker has stopped.
func (w *Worker) Enqueue(tables ...*table.Table) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dead {
		return fmt.Errorf("%w: %s", domain.ErrWorkerDead, w.pub.Target())
	}
	for _, t := range tables {
		if t == nil {
			w.logger.Warn("skipping nil table", log.Stringer("target", w.pub.Target()))
			continue
		}
		w.queue = append(w.queue, t)
	}
	return nil
}

// EnqueueWire queues wire data for table name.
func (w *Worker) EnqueueWire(name string, flip *table.Flip) error {
	t, err := table.FromWire(name, flip)
	if err != nil {
		return err
	}
	return w.Enqueue(t)
}

// Len returns the number of queued tables, including one being sent.
func (w *Worker) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Disconnect stops the worker and waits for it to exit. It returns the
// reason the worker had already died, if it stopped on its own.
func (w *Worker) Disconnect() error {
	w.cancel()
	<-w.done
	return w.err
}

// Done is closed once the worker has exited.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Err returns why the worker stopped on its own, once Done is closed.
func (w *Worker) Err() error {
	select {
	case <-w.done:
		return w.err
	default:
		return nil
	}
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	w.logger.Debug("publish worker started", log.Stringer("target", w.pub.Target()))

	for ctx.Err() == nil && w.pub.IsConnected() {
		t, ok := w.peek()
		if !ok {
			w.setState(WorkerIdle)
			w.sleep(ctx)
			continue
		}

		w.setState(WorkerDraining)
		if err := w.pub.PublishTable(ctx, t); err != nil {
			w.logger.Warn("publish failed, will retry",
				log.Stringer("target", w.pub.Target()),
				log.String("table", t.Name()),
				log.Err(err),
			)
			w.sleep(ctx)
			continue
		}
		w.pop()
	}

	if ctx.Err() == nil {
		w.err = fmt.Errorf("%w: %s: publisher disconnected", domain.ErrWorkerDead, w.pub.Target())
	}
	w.die()
}

func (w *Worker) peek() (*table.Table, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.queue) == 0 {
		return nil, false
	}
	return w.queue[0], true
}

func (w *Worker) pop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.queue[0] = nil
	w.queue = w.queue[1:]
}

func (w *Worker) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-w.clock.After(w.idle):
	}
}

func (w *Worker) die() {
	w.mu.Lock()
	dropped := len(w.queue)
	w.queue = nil
	w.dead = true
	w.mu.Unlock()

	w.setState(WorkerDead)
	w.pub.Disconnect()

	if dropped > 0 {
		w.logger.Warn("publish worker stopped with unsent tables",
			log.Stringer("target", w.pub.Target()),
			log.Int("dropped", dropped),
		)
		return
	}
	w.logger.Info("publish worker stopped", log.Stringer("target", w.pub.Target()))
}

func (w *Worker) setState(next WorkerState) {
	prev := WorkerState(w.state.Swap(int32(next)))
	if prev == next {
		return
	}
	if w.observer != nil {
		w.observer.OnStateChange(prev, next)
	}
}
