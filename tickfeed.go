// Package tickfeed is a resilient client for ticker-plant style tick-data
// processes. It subscribes to tables and streams their updates, recovering
// from connection loss on its own, and publishes tables to one or more
// targets in order.
//
// Example usage:
//
//	sub, err := tickfeed.Subscribe(ctx, tickfeed.NewTarget("tp", 5010),
//	    tickfeed.Tables("trade", "quote"),
//	    subscriber.WithTableConsumer(subscriber.TableConsumerFunc(func(t *tickfeed.Table) error {
//	        fmt.Println(t)
//	        return nil
//	    })),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sub.Start(ctx)
//	<-sub.Done()
package tickfeed

import (
	"context"

	"github.com/bft-labs/tickfeed/internal/adapters/tcp"
	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/ports"
	"github.com/bft-labs/tickfeed/pkg/publisher"
	"github.com/bft-labs/tickfeed/pkg/query"
	"github.com/bft-labs/tickfeed/pkg/subscriber"
	"github.com/bft-labs/tickfeed/pkg/table"
)

// Target identifies a remote data process.
type Target = domain.Target

// Table is a named column-major table.
type Table = table.Table

// Dict is an insertion-ordered key/value container.
type Dict = table.Dict

// Flip is the wire form of a table.
type Flip = table.Flip

// Subscription selects what a Subscriber asks for.
type Subscription = subscriber.Subscription

// Subscriber streams tables from one remote process.
type Subscriber = subscriber.Subscriber

// Publisher sends tables to one remote process.
type Publisher = publisher.Publisher

// Manager fans tables out to many remote processes.
type Manager = publisher.Manager

// Querier runs ad hoc queries against one remote process.
type Querier = query.Querier

// Dialer opens transport handles. NewDialer returns the TCP implementation.
// Any type with a matching Dial method can stand in for it.
type Dialer = ports.Dialer

// Handle is a live channel returned by a Dialer. Errors from its methods
// must wrap exactly one of ErrIO, ErrProtocol or ErrDecode.
type Handle = ports.Handle

// DialOption configures the TCP dialer.
type DialOption = tcp.Option

// TCP dialer options.
var (
	WithDialTimeout    = tcp.WithDialTimeout
	WithMaxMessageSize = tcp.WithMaxMessageSize
	WithDialLogger     = tcp.WithLogger
)

// Errors, for use with errors.Is.
var (
	ErrTargetUnavailable     = domain.ErrTargetUnavailable
	ErrSubscriptionFailed    = domain.ErrSubscriptionFailed
	ErrDataConsumer          = domain.ErrDataConsumer
	ErrProtocol              = domain.ErrProtocol
	ErrDecode                = domain.ErrDecode
	ErrIO                    = domain.ErrIO
	ErrRetriesExhausted      = domain.ErrRetriesExhausted
	ErrQueryFailed           = domain.ErrQueryFailed
	ErrColumnAlreadyExists   = domain.ErrColumnAlreadyExists
	ErrSchemaMismatch        = domain.ErrSchemaMismatch
	ErrOverwriteNotPermitted = domain.ErrOverwriteNotPermitted
	ErrUnionNotPermitted     = domain.ErrUnionNotPermitted
	ErrIndexOutOfRange       = domain.ErrIndexOutOfRange
	ErrInvalidArgument       = domain.ErrInvalidArgument
	ErrTypeMismatch          = domain.ErrTypeMismatch
	ErrAlreadyExists         = domain.ErrAlreadyExists
	ErrDoesNotExist          = domain.ErrDoesNotExist
	ErrWorkerDead            = domain.ErrWorkerDead
)

// NewTarget returns a Target without credentials.
func NewTarget(host string, port int) Target { return domain.NewTarget(host, port) }

// ParseTarget parses "[user[:password]@]host:port".
func ParseTarget(s string) (Target, error) { return domain.ParseTarget(s) }

// NewTable returns an empty table.
func NewTable(name string) (*Table, error) { return table.New(name) }

// NewDict returns an empty Dict.
func NewDict() *Dict { return table.NewDict() }

// Tables subscribes to the named tables, or all tables when none are given.
func Tables(names ...string) Subscription { return subscriber.Tables(names...) }

// Config subscribes with a configuration dictionary.
func Config(d *Dict) Subscription { return subscriber.Config(d) }

// NewDialer returns the TCP dialer.
func NewDialer(opts ...DialOption) Dialer { return tcp.NewDialer(opts...) }

// Subscribe connects to target over TCP and returns a Subscriber ready to
// Start.
func Subscribe(ctx context.Context, target Target, sub Subscription, opts ...subscriber.Option) (*Subscriber, error) {
	return subscriber.New(ctx, target, NewDialer(), sub, opts...)
}

// NewPublisher connects to target over TCP.
func NewPublisher(ctx context.Context, target Target, opts ...publisher.Option) (*Publisher, error) {
	return publisher.New(ctx, target, NewDialer(), opts...)
}

// NewManager returns an empty Manager that reaches its targets over TCP.
func NewManager(opts ...publisher.ManagerOption) *Manager {
	return publisher.NewManager(NewDialer(), opts...)
}

// NewQuerier connects to target over TCP.
func NewQuerier(ctx context.Context, target Target, opts ...query.Option) (*Querier, error) {
	return query.New(ctx, target, NewDialer(), opts...)
}
