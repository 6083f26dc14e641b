package tcp

import (
	"fmt"
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/bft-labs/tickfeed/pkg/table"
)

// MessageType is the first payload byte of every frame.
type MessageType byte

const (
	MsgAsync MessageType = iota
	MsgSync
	MsgResponse
	MsgError
	MsgLogin
)

func (t MessageType) String() string {
	switch t {
	case MsgAsync:
		return "async"
	case MsgSync:
		return "sync"
	case MsgResponse:
		return "response"
	case MsgError:
		return "error"
	case MsgLogin:
		return "login"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

// CBOR tag numbers for the wire table and dictionary types.
const (
	TagFlip     = 51001
	TagWireDict = 51002
	TagColumn   = 51003
)

// typedColumn carries a column whose element type CBOR would otherwise
// widen on decode, together with its kind.
type typedColumn struct {
	Kind   table.Kind
	Values []any
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	tags := cbor.NewTagSet()
	opts := cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired}
	if err := tags.Add(opts, reflect.TypeOf(table.Flip{}), TagFlip); err != nil {
		panic(fmt.Sprintf("register flip tag: %v", err))
	}
	if err := tags.Add(opts, reflect.TypeOf(table.WireDict{}), TagWireDict); err != nil {
		panic(fmt.Sprintf("register dict tag: %v", err))
	}
	if err := tags.Add(opts, reflect.TypeOf(typedColumn{}), TagColumn); err != nil {
		panic(fmt.Sprintf("register column tag: %v", err))
	}

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
		TimeTag:       cbor.EncTagRequired,
	}
	var err error
	encMode, err = encOpts.EncModeWithTags(tags)
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
		IntDec:      cbor.IntDecConvertSigned,
	}
	decMode, err = decOpts.DecModeWithTags(tags)
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// encodeMessage produces a frame payload: the type byte then the CBOR body.
func encodeMessage(t MessageType, body any) ([]byte, error) {
	b, err := encMode.Marshal(toWire(body))
	if err != nil {
		return nil, err
	}
	return append([]byte{byte(t)}, b...), nil
}

// decodeMessage splits a frame payload into its type and decoded body.
func decodeMessage(payload []byte) (MessageType, any, error) {
	if len(payload) < 2 {
		return 0, nil, fmt.Errorf("short payload (%d bytes)", len(payload))
	}
	var body any
	if err := decMode.Unmarshal(payload[1:], &body); err != nil {
		return MessageType(payload[0]), nil, err
	}
	return MessageType(payload[0]), fromWire(body), nil
}

// toWire dereferences table wire pointers so they encode under their tags.
func toWire(v any) any {
	switch x := v.(type) {
	case *table.Flip:
		if x == nil {
			return nil
		}
		return toWire(*x)
	case table.Flip:
		data := make([]any, len(x.Data))
		for i, col := range x.Data {
			data[i] = tagColumn(col)
		}
		return table.Flip{Columns: x.Columns, Data: data}
	case *table.WireDict:
		if x == nil {
			return nil
		}
		return toWire(*x)
	case table.WireDict:
		vals := make([]any, len(x.Values))
		for i, e := range x.Values {
			vals[i] = toWire(e)
		}
		return table.WireDict{Keys: x.Keys, Values: vals}
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = toWire(e)
		}
		return out
	default:
		return v
	}
}

// fromWire hands decoded table values out as pointers.
func fromWire(v any) any {
	switch x := v.(type) {
	case table.Flip:
		for i, col := range x.Data {
			if tc, ok := col.(typedColumn); ok {
				x.Data[i] = untagColumn(tc)
			}
		}
		return &x
	case table.WireDict:
		for i, e := range x.Values {
			x.Values[i] = fromWire(e)
		}
		return &x
	case []any:
		for i, e := range x {
			x[i] = fromWire(e)
		}
		return x
	default:
		return v
	}
}

// tagColumn wraps col in a typedColumn when all of its non-nil values share
// a kind that does not survive a CBOR round trip. Other columns pass through.
func tagColumn(col any) any {
	vals, err := table.ToSlice(col)
	if err != nil || len(vals) == 0 {
		return col
	}
	kind := table.KindAny
	for _, v := range vals {
		if v == nil {
			continue
		}
		k := table.KindOf(v)
		if kind == table.KindAny {
			kind = k
		} else if k != kind {
			return col
		}
	}
	switch kind {
	case table.KindByte, table.KindShort, table.KindInt, table.KindReal, table.KindTimespan, table.KindGUID:
		return typedColumn{Kind: kind, Values: vals}
	default:
		return col
	}
}

// untagColumn narrows decoded values back to the Go type of the column kind.
func untagColumn(tc typedColumn) []any {
	out := make([]any, len(tc.Values))
	for i, v := range tc.Values {
		out[i] = narrow(tc.Kind, v)
	}
	return out
}

func narrow(k table.Kind, v any) any {
	switch x := v.(type) {
	case int64:
		switch k {
		case table.KindByte:
			return byte(x)
		case table.KindShort:
			return int16(x)
		case table.KindInt:
			return int32(x)
		case table.KindTimespan:
			return time.Duration(x)
		}
	case float64:
		if k == table.KindReal {
			return float32(x)
		}
	case []byte:
		if k == table.KindGUID {
			if id, err := uuid.FromBytes(x); err == nil {
				return id
			}
		}
	}
	return v
}
