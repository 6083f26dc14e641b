// Package subscriber implements the ticker-plant subscribe-then-listen
// protocol on top of a connection.
//
// A Subscriber connects on construction, sends the subscription request,
// replays the snapshot returned by the handshake and then listens for
// update messages, dispatching each to a raw consumer and, when it has the
// shape [updateFunction, tableName, wireTable], to a table consumer as a
// *table.Table. Consumer failures, including panics, are logged and never
// stop the loop. On I/O failure the subscriber reconnects and resubscribes
// before listening again.
//
//	sub, err := subscriber.New(ctx, target, tickfeed.NewDialer(), subscriber.Tables("trade", "quote"),
//	    subscriber.WithTableConsumer(subscriber.TableConsumerFunc(func(t *table.Table) error {
//	        fmt.Println(t.Name(), t.RowCount())
//	        return nil
//	    })),
//	)
//	if err != nil {
//	    return err
//	}
//	sub.Start(ctx)
//	<-sub.Done()
package subscriber
