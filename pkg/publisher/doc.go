// Package publisher sends tables to remote tick-data processes.
//
// A Publisher owns one connection and pushes tables with a fire-and-forget
// update call. A Worker feeds one Publisher from a FIFO queue on its own
// goroutine, retrying the head of the queue until it is sent, so publish
// order per target is the enqueue order. A Manager keeps one Worker per
// target and fans tables out to them.
//
//	m := publisher.NewManager(tickfeed.NewDialer())
//	if err := m.Add(ctx, tickfeed.NewTarget("tp1", 5010)); err != nil {
//		return err
//	}
//	defer m.Shutdown()
//	err := m.Publish(trades)
package publisher
