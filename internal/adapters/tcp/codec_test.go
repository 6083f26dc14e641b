package tcp

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/tickfeed/pkg/table"
)

func TestCodecUpdateTriple(t *testing.T) {
	flip := &table.Flip{
		Columns: []string{"px", "size", "sym"},
		Data:    []any{[]float64{1.5, 2.5}, []int64{10, -20}, []string{"A", "B"}},
	}

	payload, err := encodeMessage(MsgAsync, []any{"upd", "trade", flip})
	require.NoError(t, err)
	assert.Equal(t, byte(MsgAsync), payload[0])

	typ, body, err := decodeMessage(payload)
	require.NoError(t, err)
	assert.Equal(t, MsgAsync, typ)

	msg, ok := body.([]any)
	require.True(t, ok)
	require.Len(t, msg, 3)
	assert.Equal(t, "upd", msg[0])
	assert.Equal(t, "trade", msg[1])

	got, ok := msg[2].(*table.Flip)
	require.True(t, ok, "got %T", msg[2])
	assert.Equal(t, flip.Columns, got.Columns)
	assert.Equal(t, []any{1.5, 2.5}, got.Data[0])
	assert.Equal(t, []any{int64(10), int64(-20)}, got.Data[1])
	assert.Equal(t, []any{"A", "B"}, got.Data[2])
}

func TestCodecKeepsColumnKinds(t *testing.T) {
	id := uuid.New()
	flip := &table.Flip{
		Columns: []string{"b", "h", "i", "e", "n", "g", "j", "mixed"},
		Data: []any{
			[]byte{1, 2},
			[]int16{7, math.MinInt16},
			[]any{int32(3), table.NullFor(table.KindInt)},
			[]float32{1.5, float32(math.NaN())},
			[]time.Duration{time.Second, table.NullFor(table.KindTimespan).(time.Duration)},
			[]uuid.UUID{id, uuid.Nil},
			[]int64{1, math.MinInt64},
			[]any{int32(1), "x"},
		},
	}

	payload, err := encodeMessage(MsgAsync, []any{"upd", "t", flip})
	require.NoError(t, err)
	_, body, err := decodeMessage(payload)
	require.NoError(t, err)

	got, ok := body.([]any)[2].(*table.Flip)
	require.True(t, ok)
	assert.Equal(t, flip.Columns, got.Columns)
	assert.Equal(t, []any{byte(1), byte(2)}, got.Data[0])
	assert.Equal(t, []any{int16(7), int16(math.MinInt16)}, got.Data[1])
	assert.Equal(t, []any{int32(3), int32(math.MinInt32)}, got.Data[2])
	assert.Equal(t, []any{id, uuid.Nil}, got.Data[5])
	assert.Equal(t, []any{int64(1), int64(math.MinInt64)}, got.Data[6])
	assert.Equal(t, []any{int64(1), "x"}, got.Data[7])

	tbl, err := table.FromWire("t", got)
	require.NoError(t, err)
	row, err := tbl.Row(1)
	require.NoError(t, err)
	for _, col := range []string{"h", "i", "e", "n", "g", "j"} {
		v, _ := row.Get(col)
		assert.True(t, table.IsNull(v), "column %s: %T %v", col, v, v)
	}
	v, _ := row.Get("e")
	assert.IsType(t, float32(0), v)
	v, _ = row.Get("n")
	assert.IsType(t, time.Duration(0), v)
}

func TestCodecSnapshotDict(t *testing.T) {
	snap := &table.WireDict{
		Keys: []any{"trade"},
		Values: []any{&table.Flip{
			Columns: []string{"sym"},
			Data:    []any{[]string{"X"}},
		}},
	}

	payload, err := encodeMessage(MsgResponse, snap)
	require.NoError(t, err)

	_, body, err := decodeMessage(payload)
	require.NoError(t, err)

	d, ok := body.(*table.WireDict)
	require.True(t, ok, "got %T", body)
	assert.Equal(t, []any{"trade"}, d.Keys)
	f, ok := d.Values[0].(*table.Flip)
	require.True(t, ok, "got %T", d.Values[0])
	assert.Equal(t, 1, f.RowCount())
}

func TestCodecScalars(t *testing.T) {
	for _, v := range []any{true, false, "s", int64(-3), 2.25, nil} {
		payload, err := encodeMessage(MsgResponse, v)
		require.NoError(t, err)
		_, got, err := decodeMessage(payload)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestCodecRejectsGarbage(t *testing.T) {
	_, _, err := decodeMessage([]byte{byte(MsgAsync), 0xff})
	assert.Error(t, err)

	_, _, err = decodeMessage([]byte{byte(MsgAsync)})
	assert.Error(t, err)
}
