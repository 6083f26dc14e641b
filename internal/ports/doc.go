// Package ports defines the interfaces that connect tickfeed's connection,
// subscriber and publisher logic to a transport implementation.
//
// # Port Interfaces
//
//   - [Dialer]: Opens a handle to a remote data process
//   - [Handle]: A live, framed channel to one process
//
// # Usage
//
// pkg/connection depends only on these interfaces. The reference TCP
// transport lives in internal/adapters/tcp; tests substitute in-memory
// fakes.
package ports
