package connection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicyWaitsOnClock(t *testing.T) {
	mock := clock.NewMock()
	start := mock.Now()
	p := RetryPolicy{Interval: time.Second}

	attempts := make(chan int, 10)
	done := make(chan error, 1)
	go func() {
		done <- p.Do(context.Background(), mock, func(attempt int) error {
			attempts <- attempt
			if attempt < 3 {
				return errors.New("not yet")
			}
			return nil
		})
	}()

	timeout := time.After(5 * time.Second)
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			assert.Len(t, attempts, 3)
			assert.GreaterOrEqual(t, mock.Now().Sub(start), 2*time.Second)
			return
		case <-timeout:
			t.Fatal("retry did not finish")
		default:
			mock.Add(time.Second)
		}
	}
}

func TestRetryPolicyCancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := DefaultRetryPolicy().Do(ctx, clock.New(), func(int) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestRetryPolicyMaxAttempts(t *testing.T) {
	boom := errors.New("boom")
	var n int
	err := RetryPolicy{Interval: time.Microsecond, MaxAttempts: 2}.Do(context.Background(), clock.New(), func(int) error {
		n++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, n)
}
