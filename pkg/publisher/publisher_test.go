package publisher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/tickfeed/internal/domain"
	"github.com/bft-labs/tickfeed/internal/fakes"
	"github.com/bft-labs/tickfeed/pkg/table"
)

var testTarget = domain.Target{Host: "tp", Port: 5010}

func tradeTable(t *testing.T, name string) *table.Table {
	t.Helper()
	tbl, err := table.FromWire(name, &table.Flip{
		Columns: []string{"px", "sym"},
		Data:    []any{[]any{1.5}, []any{"AAPL"}},
	})
	require.NoError(t, err)
	return tbl
}

func newPublisher(t *testing.T, d *fakes.Dialer, opts ...Option) *Publisher {
	t.Helper()
	p, err := New(context.Background(), testTarget, d, opts...)
	require.NoError(t, err)
	return p
}

func TestNewUnreachable(t *testing.T) {
	d := fakes.NewDialer()
	d.FailNext(1)
	_, err := New(context.Background(), testTarget, d)
	assert.ErrorIs(t, err, domain.ErrTargetUnavailable)
}

func TestPublishSendsUpdate(t *testing.T) {
	h := fakes.NewHandle()
	p := newPublisher(t, fakes.NewDialer(h))

	flip := &table.Flip{Columns: []string{"sym"}, Data: []any{[]any{"AAPL"}}}
	require.NoError(t, p.Publish(context.Background(), "trade", flip))

	sends := h.Sends()
	require.Len(t, sends, 1)
	assert.Equal(t, DefaultUpdateFunction, sends[0].Fn)
	assert.Equal(t, []any{"trade", flip}, sends[0].Args)
}

func TestPublishAbsentDataIsSuccess(t *testing.T) {
	h := fakes.NewHandle()
	p := newPublisher(t, fakes.NewDialer(h))

	assert.NoError(t, p.Publish(context.Background(), "", &table.Flip{}))
	assert.NoError(t, p.Publish(context.Background(), "trade", nil))

	empty, err := table.New("trade")
	require.NoError(t, err)
	assert.NoError(t, p.PublishTable(context.Background(), empty))

	assert.Empty(t, h.Sends())
	assert.ErrorIs(t, p.PublishTable(context.Background(), nil), domain.ErrInvalidArgument)
}

func TestPublishResetsIdleConnection(t *testing.T) {
	mock := clock.NewMock()
	first := fakes.NewHandle()
	d := fakes.NewDialer(first)
	p := newPublisher(t, d, WithClock(mock), WithResetAfter(time.Minute))

	require.NoError(t, p.PublishTable(context.Background(), tradeTable(t, "trade")))
	mock.Add(30 * time.Second)
	require.NoError(t, p.PublishTable(context.Background(), tradeTable(t, "trade")))
	assert.Equal(t, 1, d.Dials())

	mock.Add(61 * time.Second)
	require.NoError(t, p.PublishTable(context.Background(), tradeTable(t, "trade")))
	assert.Equal(t, 2, d.Dials())
	assert.True(t, first.Closed())
	assert.Len(t, first.Sends(), 2)
	assert.Len(t, d.Last().Sends(), 1)
}

func TestPublishReopensClosedConnection(t *testing.T) {
	first := fakes.NewHandle()
	d := fakes.NewDialer(first)
	p := newPublisher(t, d)

	first.Break()
	require.NoError(t, p.PublishTable(context.Background(), tradeTable(t, "trade")))
	assert.Equal(t, 2, d.Dials())
	assert.Len(t, d.Last().Sends(), 1)
}

func TestPublishFailures(t *testing.T) {
	tests := []struct {
		name      string
		send      func(string, ...any) error
		wantDials int
	}{
		{
			name:      "local error keeps connection",
			send:      func(string, ...any) error { return errors.New("unsupported type") },
			wantDials: 1,
		},
		{
			name:      "panic keeps connection",
			send:      func(string, ...any) error { panic("encoder bug") },
			wantDials: 1,
		},
		{
			name:      "io error reconnects",
			send:      func(string, ...any) error { return fmt.Errorf("%w: broken pipe", domain.ErrIO) },
			wantDials: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := fakes.NewHandle()
			h.SendFunc = tt.send
			d := fakes.NewDialer(h)
			p := newPublisher(t, d)

			err := p.PublishTable(context.Background(), tradeTable(t, "trade"))
			assert.Error(t, err)
			assert.Equal(t, tt.wantDials, d.Dials())
			assert.True(t, p.IsConnected())
		})
	}
}

func TestPublishTablesInOrder(t *testing.T) {
	h := fakes.NewHandle()
	h.SendFunc = func(fn string, args ...any) error {
		if args[0] == "bad" {
			return errors.New("rejected")
		}
		return nil
	}
	p := newPublisher(t, fakes.NewDialer(h))

	errs := p.PublishTables(context.Background(), []*table.Table{
		tradeTable(t, "a"), tradeTable(t, "bad"), tradeTable(t, "b"),
	})
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
	assert.NoError(t, errs[2])

	var names []any
	for _, s := range h.Sends() {
		names = append(names, s.Args[0])
	}
	assert.Equal(t, []any{"a", "b"}, names)
}
