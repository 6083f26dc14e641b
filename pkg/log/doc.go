// Package log provides the logging abstraction used by tickfeed components.
//
// Components accept a [Logger] and default to [NoopLogger]. The zerolog
// adapter is what the tickfeed command wires in:
//
//	logger := log.NewZerologAdapter(os.Stderr, zerolog.InfoLevel)
//	sub, err := subscriber.New(ctx, target, dialer,
//	    subscriber.WithLogger(logger),
//	    subscriber.WithTableConsumer(handle),
//	)
//
// Any other logging library can be used by implementing the four
// level methods of [Logger].
package log
