package table

import (
	"fmt"
	"iter"
	"reflect"
	"strings"

	"github.com/bft-labs/tickfeed/internal/domain"
)

// Dict is an insertion-ordered key/value container. Keys are unique,
// comparable and non-nil. Values are never nil; absent values are stored as
// null sentinels through AddOrNull.
type Dict struct {
	keys   []any
	values map[any]any
}

// NewDict returns an empty Dict.
func NewDict() *Dict {
	return &Dict{values: make(map[any]any)}
}

// DictFromWire builds a Dict from its wire form. Duplicate keys keep the
// position of their first occurrence and the value of their last.
func DictFromWire(w *WireDict) (*Dict, error) {
	if w == nil {
		return nil, fmt.Errorf("%w: nil dictionary", domain.ErrInvalidArgument)
	}
	if len(w.Keys) != len(w.Values) {
		return nil, fmt.Errorf("%w: %d keys, %d values", domain.ErrSchemaMismatch, len(w.Keys), len(w.Values))
	}
	d := NewDict()
	for i, k := range w.Keys {
		if err := checkKey(k); err != nil {
			return nil, err
		}
		if _, ok := d.values[k]; !ok {
			d.keys = append(d.keys, k)
		}
		v := w.Values[i]
		if v == nil {
			v = GenericNull{}
		}
		d.values[k] = v
	}
	return d, nil
}

func checkKey(key any) error {
	if key == nil {
		return fmt.Errorf("%w: key cannot be nil", domain.ErrInvalidArgument)
	}
	if !reflect.TypeOf(key).Comparable() {
		return fmt.Errorf("%w: key of type %T is not comparable", domain.ErrInvalidArgument, key)
	}
	return nil
}

// Add stores value under key. It fails if the key or value is nil or the
// key is already present.
func (d *Dict) Add(key, value any) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, ok := d.values[key]; ok {
		return fmt.Errorf("%w: key %v already exists", domain.ErrOverwriteNotPermitted, key)
	}
	if value == nil {
		return fmt.Errorf("%w: nil value for key %v", domain.ErrInvalidArgument, key)
	}
	d.keys = append(d.keys, key)
	d.values[key] = value
	return nil
}

// AddOrNull stores value under key, substituting the null sentinel of kind
// when value is nil.
func (d *Dict) AddOrNull(key, value any, kind Kind) error {
	if value == nil {
		value = NullFor(kind)
	}
	return d.Add(key, value)
}

// Get returns the value stored under key.
func (d *Dict) Get(key any) (any, bool) {
	if key == nil || !reflect.TypeOf(key).Comparable() {
		return nil, false
	}
	v, ok := d.values[key]
	return v, ok
}

// GetAs returns the value under key asserted to T.
func GetAs[T any](d *Dict, key any) (T, error) {
	var zero T
	v, ok := d.Get(key)
	if !ok {
		return zero, fmt.Errorf("%w: no key %v", domain.ErrInvalidArgument, key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %v holds %T, not %T", domain.ErrTypeMismatch, key, v, zero)
	}
	return t, nil
}

// Has reports whether key is present.
func (d *Dict) Has(key any) bool {
	_, ok := d.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []any {
	out := make([]any, len(d.keys))
	copy(out, d.keys)
	return out
}

// StringKeys returns the keys in insertion order formatted as strings.
func (d *Dict) StringKeys() []string {
	out := make([]string, len(d.keys))
	for i, k := range d.keys {
		out[i] = fmt.Sprint(k)
	}
	return out
}

// StringMap returns a copy of the contents keyed by the string form of each key.
func (d *Dict) StringMap() map[string]any {
	out := make(map[string]any, len(d.keys))
	for _, k := range d.keys {
		out[fmt.Sprint(k)] = d.values[k]
	}
	return out
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// IsEmpty reports whether the dict has no entries.
func (d *Dict) IsEmpty() bool { return len(d.keys) == 0 }

// All iterates over entries in insertion order.
func (d *Dict) All() iter.Seq2[any, any] {
	return func(yield func(any, any) bool) {
		for _, k := range d.keys {
			if !yield(k, d.values[k]) {
				return
			}
		}
	}
}

// Union merges other into d. Only disjoint key sets may be merged; on any
// overlap d is left unchanged. A nil other is a no-op.
func (d *Dict) Union(other *Dict) error {
	if other == nil {
		return nil
	}
	for _, k := range other.keys {
		if _, ok := d.values[k]; ok {
			return fmt.Errorf("%w: key %v present in both", domain.ErrUnionNotPermitted, k)
		}
	}
	for _, k := range other.keys {
		d.keys = append(d.keys, k)
		d.values[k] = other.values[k]
	}
	return nil
}

// ToWire returns the wire form, keys in insertion order.
func (d *Dict) ToWire() *WireDict {
	w := &WireDict{
		Keys:   make([]any, len(d.keys)),
		Values: make([]any, len(d.keys)),
	}
	for i, k := range d.keys {
		w.Keys[i] = k
		w.Values[i] = d.values[k]
	}
	return w
}

// String renders the dict as "{ k1 = v1; k2 = v2 }".
func (d *Dict) String() string {
	var b strings.Builder
	b.WriteString("{ ")
	for i, k := range d.keys {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%v = %v", k, d.values[k])
	}
	b.WriteString(" }")
	return b.String()
}

// DictIsNullOrEmpty reports whether d is nil or has no entries.
func DictIsNullOrEmpty(d *Dict) bool {
	return d == nil || d.IsEmpty()
}
