package table

import (
	"fmt"
	"reflect"

	"github.com/bft-labs/tickfeed/internal/domain"
)

// Flip is the wire form of a table: column names and, at the same index in
// Data, the column's values as a slice of any element type.
type Flip struct {
	Columns []string
	Data    []any
}

// NewFlip builds a Flip, checking that every column has a value slice.
func NewFlip(columns []string, data ...any) (*Flip, error) {
	if len(columns) != len(data) {
		return nil, fmt.Errorf("%w: %d column names, %d columns", domain.ErrSchemaMismatch, len(columns), len(data))
	}
	return &Flip{Columns: columns, Data: data}, nil
}

// RowCount returns the length of the first column, or 0 when there is none.
func (f *Flip) RowCount() int {
	if f == nil || len(f.Data) == 0 {
		return 0
	}
	return sliceLen(f.Data[0])
}

// Column returns the values of the named column.
func (f *Flip) Column(name string) ([]any, bool) {
	if f == nil {
		return nil, false
	}
	for i, c := range f.Columns {
		if c == name && i < len(f.Data) {
			vals, err := ToSlice(f.Data[i])
			if err != nil {
				return nil, false
			}
			return vals, true
		}
	}
	return nil, false
}

// FlipIsNullOrEmpty reports whether f is nil or has no rows.
func FlipIsNullOrEmpty(f *Flip) bool {
	return f == nil || f.RowCount() == 0
}

// WireDict is the wire form of a dictionary: parallel key and value lists.
type WireDict struct {
	Keys   []any
	Values []any
}

// ToSlice converts any slice or array value, typed or not, to []any.
// A nil value yields a nil slice.
func ToSlice(v any) ([]any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return x, nil
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out, nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("%w: %T is not a list", domain.ErrTypeMismatch, v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

func sliceLen(v any) int {
	if s, ok := v.([]any); ok {
		return len(s)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len()
	}
	return 0
}
