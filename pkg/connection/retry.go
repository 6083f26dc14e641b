package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bft-labs/tickfeed/internal/domain"
)

// DefaultReconnectInterval is the pause between reconnect attempts.
const DefaultReconnectInterval = 2 * time.Second

// RetryPolicy is a fixed-interval retry schedule. There is no backoff growth.
type RetryPolicy struct {
	// Interval is the pause between attempts.
	Interval time.Duration

	// MaxAttempts bounds the number of attempts. Zero means retry forever.
	MaxAttempts int
}

// DefaultRetryPolicy retries forever every DefaultReconnectInterval.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Interval: DefaultReconnectInterval}
}

// Do calls fn until it succeeds, the policy is exhausted or ctx is done.
// Attempts are numbered from 1. The wait between attempts is measured on clk.
func (p RetryPolicy) Do(ctx context.Context, clk clock.Clock, fn func(attempt int) error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
			return fmt.Errorf("%w after %d attempts: %w", domain.ErrRetriesExhausted, attempt, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(p.Interval):
		}
	}
}
