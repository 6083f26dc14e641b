// Package connection manages the transport handle for a single remote data
// process: connect, disconnect, a liveness predicate and a blocking
// fixed-interval reconnect.
//
// A Connection is single-owner and must not be driven by more than one
// goroutine. The exception is Interrupt, which another goroutine may use to
// unblock a pending Receive.
//
// Reconnect retries forever by default, sleeping a fixed interval between
// attempts. A permanently unreachable target therefore blocks the caller
// until its context is cancelled. Bound the retries with WithRetryPolicy
// when that is not acceptable.
package connection
