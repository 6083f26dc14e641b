package subscriber

import "github.com/bft-labs/tickfeed/pkg/table"

// TableConsumer receives snapshot tables and table updates.
type TableConsumer interface {
	ConsumeTable(t *table.Table) error
}

// TableConsumerFunc adapts a function to TableConsumer.
type TableConsumerFunc func(t *table.Table) error

func (f TableConsumerFunc) ConsumeTable(t *table.Table) error { return f(t) }

// RawConsumer receives every inbound message as decoded by the transport.
type RawConsumer interface {
	ConsumeRaw(msg any) error
}

// RawConsumerFunc adapts a function to RawConsumer.
type RawConsumerFunc func(msg any) error

func (f RawConsumerFunc) ConsumeRaw(msg any) error { return f(msg) }

// Failure classifies a fatal subscriber failure.
type Failure int

const (
	// FailureConnection means the initial connect failed.
	FailureConnection Failure = iota

	// FailureSubscription means the subscribe handshake was rejected.
	FailureSubscription
)

func (f Failure) String() string {
	switch f {
	case FailureConnection:
		return "connection failed"
	case FailureSubscription:
		return "subscription failed"
	default:
		return "unknown"
	}
}

// FailureListener is notified of fatal failures.
type FailureListener interface {
	OnFailure(kind Failure, err error)
}

// FailureListenerFunc adapts a function to FailureListener.
type FailureListenerFunc func(kind Failure, err error)

func (f FailureListenerFunc) OnFailure(kind Failure, err error) { f(kind, err) }

// StateObserver is called when the subscriber changes state.
// It is called synchronously from the goroutine driving the subscriber.
type StateObserver interface {
	OnStateChange(previous, current State)
}
