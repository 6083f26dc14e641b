package domain

import "errors"

// Domain errors represent error conditions in the tickfeed domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrTargetUnavailable is returned when a connection to a target cannot be opened.
	ErrTargetUnavailable = errors.New("tickfeed: target unavailable")

	// ErrSubscriptionFailed is returned when the subscribe handshake is rejected.
	ErrSubscriptionFailed = errors.New("tickfeed: subscription failed")

	// ErrDataConsumer wraps a failure raised by a registered consumer callback.
	ErrDataConsumer = errors.New("tickfeed: data consumer failure")

	// ErrProtocol is returned by a transport for a well-formed but unexpected message.
	ErrProtocol = errors.New("tickfeed: protocol error")

	// ErrDecode is returned by a transport when a message payload cannot be decoded.
	ErrDecode = errors.New("tickfeed: decode error")

	// ErrIO is returned by a transport when the underlying channel failed.
	ErrIO = errors.New("tickfeed: i/o error")

	// ErrRetriesExhausted is returned when a bounded retry policy gives up.
	ErrRetriesExhausted = errors.New("tickfeed: retries exhausted")

	// ErrQueryFailed is returned when a query could not be run or the remote
	// process rejected it.
	ErrQueryFailed = errors.New("tickfeed: query failed")
)

// Data model errors. These are local precondition failures and are never retried.
var (
	ErrColumnAlreadyExists   = errors.New("tickfeed: column already exists")
	ErrSchemaMismatch        = errors.New("tickfeed: schema mismatch")
	ErrOverwriteNotPermitted = errors.New("tickfeed: data overwrite not permitted")
	ErrUnionNotPermitted     = errors.New("tickfeed: union not permitted")
	ErrIndexOutOfRange       = errors.New("tickfeed: index out of range")
	ErrInvalidArgument       = errors.New("tickfeed: invalid argument")
	ErrTypeMismatch          = errors.New("tickfeed: type mismatch")
)

// Publisher registry errors.
var (
	// ErrAlreadyExists is returned when a target is already registered.
	ErrAlreadyExists = errors.New("tickfeed: publisher already exists")

	// ErrDoesNotExist is returned when a target is not registered.
	ErrDoesNotExist = errors.New("tickfeed: publisher does not exist")

	// ErrWorkerDead is returned when enqueueing to a worker whose drain loop has exited.
	ErrWorkerDead = errors.New("tickfeed: publisher worker is dead")
)
