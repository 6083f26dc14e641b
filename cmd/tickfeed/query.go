package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/pkg/connection"
	"github.com/bft-labs/tickfeed/pkg/query"
	"github.com/bft-labs/tickfeed/pkg/table"
)

type queryFlags struct {
	async bool
	table string
}

func newQueryCmd(c *cli) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "query <expr> [args...]",
		Short: "Run a query against the target and print the result",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(qf, args[0], args[1:])
		},
	}
	cmd.Flags().BoolVar(&qf.async, "async", false, "send asynchronously and wait for the next message")
	cmd.Flags().StringVar(&qf.table, "table", "result", "name for a table result")
	return cmd
}

func (c *cli) runQuery(qf queryFlags, expr string, rest []string) error {
	ctx, cancel := c.signalContext()
	defer cancel()

	q, err := query.New(ctx, c.cfg.Target(), c.dialer(),
		query.WithLogger(c.logger),
		query.WithRetryPolicy(connection.RetryPolicy{Interval: c.cfg.ReconnectInterval}),
	)
	if err != nil {
		return fmt.Errorf("create querier: %w", err)
	}
	defer q.Close()

	args := make([]any, len(rest))
	for i, a := range rest {
		args[i] = a
	}

	run := q.Query
	if qf.async {
		run = q.QueryAsync
	}
	res, err := run(ctx, expr, args...)
	if err != nil {
		return err
	}

	t, err := table.FromObjectNamed(qf.table, res)
	switch {
	case err == nil && t != nil:
		return writeRows(c.stdout, t)
	case err != nil && !errors.Is(err, domain.ErrTypeMismatch):
		return err
	}
	return json.NewEncoder(c.stdout).Encode(res)
}
