package table

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Kind identifies the element type of a value for null-sentinel purposes.
type Kind int

const (
	KindAny Kind = iota
	KindBool
	KindGUID
	KindByte
	KindShort
	KindInt
	KindLong
	KindReal
	KindFloat
	KindSymbol
	KindString
	KindTimestamp
	KindTimespan
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindGUID:
		return "guid"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindReal:
		return "real"
	case KindFloat:
		return "float"
	case KindSymbol:
		return "symbol"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindTimespan:
		return "timespan"
	default:
		return "any"
	}
}

// GenericNull is the null of a mixed or unknown-typed value.
type GenericNull struct{}

func (GenericNull) String() string { return "::" }

// NullFor returns the null sentinel for a kind. Integral kinds use the
// minimum value of their width, floating kinds use NaN, symbols the empty
// string, GUIDs uuid.Nil and timestamps the zero time.
func NullFor(k Kind) any {
	switch k {
	case KindBool:
		return false
	case KindGUID:
		return uuid.Nil
	case KindByte:
		return byte(0)
	case KindShort:
		return int16(math.MinInt16)
	case KindInt:
		return int32(math.MinInt32)
	case KindLong:
		return int64(math.MinInt64)
	case KindReal:
		return float32(math.NaN())
	case KindFloat:
		return math.NaN()
	case KindSymbol:
		return ""
	case KindString:
		return []byte{}
	case KindTimestamp:
		return time.Time{}
	case KindTimespan:
		return time.Duration(math.MinInt64)
	default:
		return GenericNull{}
	}
}

// KindOf reports the kind of v. Values of unrecognized types are KindAny.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool:
		return KindBool
	case uuid.UUID:
		return KindGUID
	case byte:
		return KindByte
	case int16:
		return KindShort
	case int32:
		return KindInt
	case int64, int:
		return KindLong
	case float32:
		return KindReal
	case float64:
		return KindFloat
	case string:
		return KindSymbol
	case []byte:
		return KindString
	case time.Time:
		return KindTimestamp
	case time.Duration:
		return KindTimespan
	default:
		return KindAny
	}
}

// IsNull reports whether v is nil or the null sentinel of its own kind.
// Booleans and bytes have no distinguishable null and are never reported null.
func IsNull(v any) bool {
	switch x := v.(type) {
	case nil, GenericNull:
		return true
	case uuid.UUID:
		return x == uuid.Nil
	case int16:
		return x == math.MinInt16
	case int32:
		return x == math.MinInt32
	case int64:
		return x == math.MinInt64
	case int:
		return int64(x) == math.MinInt64
	case float32:
		return math.IsNaN(float64(x))
	case float64:
		return math.IsNaN(x)
	case string:
		return x == ""
	case []byte:
		return len(x) == 0
	case time.Time:
		return x.IsZero()
	case time.Duration:
		return x == time.Duration(math.MinInt64)
	default:
		return false
	}
}
