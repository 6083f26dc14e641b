package publisher

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
	"github.com/bft-labs/tickfeed/pkg/log"
	"github.com/bft-labs/tickfeed/pkg/table"
)

// Queue is the part of a Worker a Manager drives.
type Queue interface {
	Enqueue(tables ...*table.Table) error
	Len() int
	Disconnect() error
}

// WorkerFactory builds the queue for a newly registered target.
type WorkerFactory func(ctx context.Context, target domain.Target) (Queue, error)

// Manager keeps one queue per target and fans tables out to them. It is
// safe for concurrent use.
type Manager struct {
	factory WorkerFactory
	logger  log.Logger

	mu      sync.Mutex
	workers map[domain.Target]Queue
}

// NewManager returns an empty Manager. Unless WithWorkerFactory is given,
// targets are served by a Publisher on dialer drained by a Worker.
func NewManager(dialer ports.Dialer, opts ...ManagerOption) *Manager {
	o := managerOptions{logger: log.NewNoopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.factory == nil {
		o.factory = defaultFactory(dialer, o)
	}
	return &Manager{
		factory: o.factory,
		logger:  o.logger,
		workers: make(map[domain.Target]Queue),
	}
}

func defaultFactory(dialer ports.Dialer, o managerOptions) WorkerFactory {
	pubOpts := append([]Option{WithLogger(o.logger)}, o.pubOpts...)
	workerOpts := append([]WorkerOption{WithWorkerLogger(o.logger)}, o.workerOpts...)
	return func(ctx context.Context, target domain.Target) (Queue, error) {
		pub, err := New(ctx, target, dialer, pubOpts...)
		if err != nil {
			return nil, err
		}
		// The worker outlives the call that registered it.
		return StartWorker(context.WithoutCancel(ctx), pub, workerOpts...), nil
	}
}

// Add connects to target and registers it. It fails with
// domain.ErrAlreadyExists when target is already registered.
func (m *Manager) Add(ctx context.Context, target domain.Target) error {
	if m.has(target) {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, target)
	}

	q, err := m.factory(ctx, target)
	if err != nil {
		return fmt.Errorf("add publisher %s: %w", target, err)
	}

	m.mu.Lock()
	if _, ok := m.workers[target]; ok {
		m.mu.Unlock()
		_ = q.Disconnect()
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, target)
	}
	m.workers[target] = q
	m.mu.Unlock()

	m.logger.Info("publisher added", log.Stringer("target", target))
	return nil
}

// Publish queues tables for every registered target. Targets proceed
// independently; failures are collected into one error.
func (m *Manager) Publish(tables ...*table.Table) error {
	m.mu.Lock()
	targets := make([]domain.Target, 0, len(m.workers))
	queues := make([]Queue, 0, len(m.workers))
	for t, q := range m.workers {
		targets = append(targets, t)
		queues = append(queues, q)
	}
	m.mu.Unlock()

	return enqueueAll(targets, queues, tables)
}

// PublishTo queues tables for the given targets only. Every target must be
// registered; otherwise it fails with domain.ErrDoesNotExist before any
// table is queued.
func (m *Manager) PublishTo(targets []domain.Target, tables ...*table.Table) error {
	m.mu.Lock()
	queues := make([]Queue, 0, len(targets))
	var missing *multierror.Error
	for _, t := range targets {
		q, ok := m.workers[t]
		if !ok {
			missing = multierror.Append(missing, fmt.Errorf("%w: %s", domain.ErrDoesNotExist, t))
			continue
		}
		queues = append(queues, q)
	}
	m.mu.Unlock()

	if err := missing.ErrorOrNil(); err != nil {
		return err
	}
	return enqueueAll(targets, queues, tables)
}

// Disconnect stops and deregisters target. It fails with
// domain.ErrDoesNotExist when target is not registered.
func (m *Manager) Disconnect(target domain.Target) error {
	m.mu.Lock()
	q, ok := m.workers[target]
	delete(m.workers, target)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrDoesNotExist, target)
	}
	err := q.Disconnect()
	m.logger.Info("publisher removed", log.Stringer("target", target))
	if err != nil {
		return fmt.Errorf("publisher %s: %w", target, err)
	}
	return nil
}

// Shutdown disconnects every registered target.
func (m *Manager) Shutdown() error {
	var result *multierror.Error
	for _, t := range m.Targets() {
		if err := m.Disconnect(t); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Pending returns the number of queued tables across all targets.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, q := range m.workers {
		n += q.Len()
	}
	return n
}

// Targets returns the registered targets ordered by their string form.
func (m *Manager) Targets() []domain.Target {
	m.mu.Lock()
	out := make([]domain.Target, 0, len(m.workers))
	for t := range m.workers {
		out = append(out, t)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Sync makes the registered set equal to targets: unlisted targets are
// disconnected and missing ones are added.
func (m *Manager) Sync(ctx context.Context, targets []domain.Target) error {
	want := make(map[domain.Target]struct{}, len(targets))
	for _, t := range targets {
		want[t] = struct{}{}
	}

	var result *multierror.Error
	for _, t := range m.Targets() {
		if _, ok := want[t]; ok {
			delete(want, t)
			continue
		}
		if err := m.Disconnect(t); err != nil {
			result = multierror.Append(result, err)
		}
	}
	for _, t := range targets {
		if _, ok := want[t]; !ok {
			continue
		}
		delete(want, t)
		if err := m.Add(ctx, t); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (m *Manager) has(target domain.Target) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.workers[target]
	return ok
}

func enqueueAll(targets []domain.Target, queues []Queue, tables []*table.Table) error {
	var result *multierror.Error
	for i, q := range queues {
		if err := q.Enqueue(tables...); err != nil {
			result = multierror.Append(result, fmt.Errorf("publish to %s: %w", targets[i], err))
		}
	}
	return result.ErrorOrNil()
}
