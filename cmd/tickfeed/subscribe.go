package main

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/cobra"

	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/log"
	"github.com/bft-labs/tickfeed/pkg/subscriber"
	"github.com/bft-labs/tickfeed/pkg/table"
)

func newSubscribeCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Subscribe to tables and stream updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSubscribe()
		},
	}
	cmd.Flags().StringSliceVar(&c.cfg.Tables, "tables", c.cfg.Tables, "tables to subscribe to (default: all)")
	cmd.Flags().StringVar(&c.cfg.SubscribeFunction, "sub-func", c.cfg.SubscribeFunction, "remote subscribe function")
	cmd.Flags().StringSliceVar(&c.cfg.UpdateFunctions, "update-funcs", c.cfg.UpdateFunctions, "function names that mark a table update")
	cmd.Flags().BoolVar(&c.cfg.Print, "print", c.cfg.Print, "print rows as JSON lines on stdout")
	return cmd
}

func (c *cli) runSubscribe() error {
	ctx, cancel := c.signalContext()
	defer cancel()

	var mu sync.Mutex
	consumer := subscriber.TableConsumerFunc(func(t *table.Table) error {
		c.logger.Info("table received", log.String("table", t.Name()), log.Int("rows", t.RowCount()))
		if !c.cfg.Print {
			return nil
		}
		mu.Lock()
		defer mu.Unlock()
		return writeRows(c.stdout, t)
	})

	sub, err := subscriber.New(ctx, c.cfg.Target(), c.dialer(), subscriber.Tables(c.cfg.Tables...),
		subscriber.WithLogger(c.logger),
		subscriber.WithTableConsumer(consumer),
		subscriber.WithSubscribeFunction(c.cfg.SubscribeFunction),
		subscriber.WithUpdateFunctions(c.cfg.UpdateFunctions...),
		subscriber.WithRetryPolicy(connection.RetryPolicy{Interval: c.cfg.ReconnectInterval}),
		subscriber.WithFailureListener(subscriber.FailureListenerFunc(func(kind subscriber.Failure, err error) {
			c.logger.Error("subscriber failure", log.String("kind", kind.String()), log.Err(err))
		})),
	)
	if err != nil {
		return fmt.Errorf("create subscriber: %w", err)
	}
	defer sub.Close()

	sub.Start(ctx)
	<-sub.Done()

	if err := sub.Err(); err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}
