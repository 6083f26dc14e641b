package ports

import (
	"context"

	"github.com/bft-labs/tickfeed/internal/domain"
)

// Dialer opens handles to remote data processes.
type Dialer interface {
	// Dial opens a handle to target, passing its credentials through.
	// Errors should wrap domain.ErrTargetUnavailable.
	Dial(ctx context.Context, target domain.Target) (Handle, error)
}

// Handle is a live channel to one remote process.
//
// Errors returned by Call, Send and Receive must wrap exactly one of
// domain.ErrIO (the channel is unusable and must be reopened),
// domain.ErrProtocol (an unexpected but well-framed message) or
// domain.ErrDecode (a payload that could not be decoded). Callers rely on
// this classification to decide between dropping a message and reconnecting.
//
// A Handle is not safe for concurrent use by multiple readers.
type Handle interface {
	// Call invokes fn synchronously and returns its result.
	Call(fn string, args ...any) (any, error)

	// Send invokes fn asynchronously. No response is awaited.
	Send(fn string, args ...any) error

	// Receive blocks until the next inbound message.
	Receive() (any, error)

	// Open reports whether the channel is still usable.
	Open() bool

	// Close releases the channel.
	Close() error
}
