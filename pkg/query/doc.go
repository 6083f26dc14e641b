// Package query runs ad hoc queries against a remote data process.
//
// Query calls a remote function and waits for its result on the same
// channel. QueryAsync sends the function without a synchronous response and
// then reads the next inbound message as the result, for processes that
// answer asynchronous requests with a deferred reply.
//
// Both reopen a dropped connection before running, blocking until the
// target is reachable again or ctx is done. An I/O failure during the query
// closes the connection, so the next query starts by reconnecting. Every
// failure wraps tickfeed.ErrQueryFailed.
//
//	q, err := query.New(ctx, tickfeed.NewTarget("hdb", 5012), tickfeed.NewDialer())
//	if err != nil {
//		return err
//	}
//	defer q.Close()
//	trades, err := q.QueryTable(ctx, "trade", "select from trade where sym=`AAPL")
package query
