package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/tickfeed/internal/cliconfig"
	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/log"
	"github.com/bft-labs/tickfeed/pkg/publisher"
	"github.com/bft-labs/tickfeed/plugins/configwatcher"
)

func newPublishCmd(c *cli) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish JSON-line rows to every configured target",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPublish(watch)
		},
	}
	cmd.Flags().StringSliceVar(&c.publishers, "publisher", nil, "publish target [user[:pass]@]host:port (repeatable)")
	cmd.Flags().StringVar(&c.cfg.Input, "input", "", "file of JSON-line rows (default: stdin)")
	cmd.Flags().StringVar(&c.cfg.PublishFunction, "pub-func", c.cfg.PublishFunction, "remote update function")
	cmd.Flags().DurationVar(&c.cfg.ResetAfter, "reset-after", c.cfg.ResetAfter, "reset a connection idle for longer than this (0 disables)")
	cmd.Flags().DurationVar(&c.cfg.IdleInterval, "idle-interval", c.cfg.IdleInterval, "sleep between polls of an empty queue")
	cmd.Flags().BoolVar(&watch, "watch", false, "follow [[publishers]] edits in the config file until interrupted")
	return cmd
}

func (c *cli) runPublish(watch bool) error {
	if len(c.cfg.Publishers) == 0 {
		return fmt.Errorf("no publisher targets configured")
	}

	ctx, cancel := c.signalContext()
	defer cancel()

	m := publisher.NewManager(c.dialer(),
		publisher.WithManagerLogger(c.logger),
		publisher.WithPublisherOptions(
			publisher.WithUpdateFunction(c.cfg.PublishFunction),
			publisher.WithResetAfter(c.cfg.ResetAfter),
			publisher.WithRetryPolicy(connection.RetryPolicy{Interval: c.cfg.ReconnectInterval}),
		),
		publisher.WithWorkerOptions(publisher.WithIdleInterval(c.cfg.IdleInterval)),
	)
	defer func() {
		if err := m.Shutdown(); err != nil {
			c.logger.Warn("shutdown", log.Err(err))
		}
	}()

	if err := m.Sync(ctx, c.cfg.Publishers); err != nil {
		return err
	}

	if watch && c.cfgPath != "" {
		w := configwatcher.New(c.cfgPath, func(ctx context.Context) error {
			targets, err := cliconfig.PublisherTargets(c.cfgPath)
			if err != nil {
				return err
			}
			return m.Sync(ctx, targets)
		}, configwatcher.WithLogger(c.logger))
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Shutdown()
	}

	in := c.stdin
	if c.cfg.Input != "" {
		f, err := os.Open(c.cfg.Input)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	if err := c.publishFrom(m, in); err != nil {
		return err
	}

	if watch {
		<-ctx.Done()
		return nil
	}
	return c.waitSent(ctx, m)
}

// waitSent blocks until every queue is empty or ctx is done.
func (c *cli) waitSent(ctx context.Context, m *publisher.Manager) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		n := m.Pending()
		if n == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("interrupted with %d tables unsent", n)
		case <-ticker.C:
		}
	}
}

func (c *cli) publishFrom(m *publisher.Manager, r io.Reader) error {
	tables, err := readRows(r)
	if err != nil {
		return fmt.Errorf("read rows: %w", err)
	}
	for _, t := range tables {
		c.logger.Info("publishing table", log.String("table", t.Name()), log.Int("rows", t.RowCount()))
	}
	return m.Publish(tables...)
}
