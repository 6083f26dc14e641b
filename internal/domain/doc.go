// Package domain contains the core value objects and error taxonomy for tickfeed.
//
// This package is the innermost layer. It has no dependencies on transport,
// logging or configuration concerns.
//
// # Values
//
//   - [Target]: A remote data process (host, port, optional credentials)
//
// # Errors
//
// Connection and transport errors ([ErrTargetUnavailable], [ErrIO],
// [ErrProtocol], [ErrDecode]) drive the retry behavior of subscribers and
// publishers. Data model errors ([ErrSchemaMismatch], [ErrColumnAlreadyExists]
// and friends) are local precondition failures surfaced synchronously to the
// caller. All errors are matched with errors.Is.
package domain
