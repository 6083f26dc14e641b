package table

import (
	"fmt"
	"iter"
	"slices"

	"github.com/bft-labs/tickfeed/internal/domain"
)

// Table is a named, column-major container. Every column holds exactly
// RowCount values; column names are unique.
type Table struct {
	name     string
	columns  map[string][]any
	rowCount int
}

// New returns an empty table.
func New(name string) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: table name cannot be empty", domain.ErrInvalidArgument)
	}
	return &Table{name: name, columns: make(map[string][]any)}, nil
}

// FromWire returns a table named name populated from wire data.
func FromWire(name string, f *Flip) (*Table, error) {
	t, err := New(name)
	if err != nil {
		return nil, err
	}
	if err := t.SetInitialDataSet(f); err != nil {
		return nil, err
	}
	return t, nil
}

// FromObject converts a decoded wire value into a table named "table".
// A nil value yields a nil table and no error.
func FromObject(v any) (*Table, error) {
	return FromObjectNamed("table", v)
}

// FromObjectNamed is FromObject with a caller-chosen table name.
func FromObjectNamed(name string, v any) (*Table, error) {
	switch f := v.(type) {
	case nil:
		return nil, nil
	case *Flip:
		return FromWire(name, f)
	case Flip:
		return FromWire(name, &f)
	default:
		return nil, fmt.Errorf("%w: %T is not a table", domain.ErrTypeMismatch, v)
	}
}

// FromRows builds a table by adding each row in order.
func FromRows(name string, rows []*Dict) (*Table, error) {
	t, err := New(name)
	if err != nil {
		return nil, err
	}
	for i, r := range rows {
		if err := t.AddDictRow(r); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Rename changes the table name.
func (t *Table) Rename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: table name cannot be empty", domain.ErrInvalidArgument)
	}
	t.name = name
	return nil
}

// SetInitialDataSet replaces the contents with wire data. It fails with
// ErrOverwriteNotPermitted when the table already holds rows.
func (t *Table) SetInitialDataSet(f *Flip) error {
	if !t.IsEmpty() {
		return fmt.Errorf("%w: table %s already populated", domain.ErrOverwriteNotPermitted, t.name)
	}
	return t.setData(f)
}

// ForceSetInitialDataSet replaces the contents with wire data regardless of
// what the table already holds.
func (t *Table) ForceSetInitialDataSet(f *Flip) error {
	return t.setData(f)
}

// setData infers the row count from the first column. Column lengths are
// not cross-checked here; Row reports a short column as a schema mismatch.
func (t *Table) setData(f *Flip) error {
	if f == nil {
		return fmt.Errorf("%w: nil wire table", domain.ErrInvalidArgument)
	}
	if len(f.Columns) != len(f.Data) {
		return fmt.Errorf("%w: %d column names, %d columns", domain.ErrSchemaMismatch, len(f.Columns), len(f.Data))
	}

	columns := make(map[string][]any, len(f.Columns))
	for i, name := range f.Columns {
		vals, err := ToSlice(f.Data[i])
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}
		columns[name] = slices.Clone(vals)
	}

	t.columns = columns
	t.rowCount = 0
	if len(f.Columns) > 0 {
		t.rowCount = len(columns[f.Columns[0]])
	}
	return nil
}

// AddColumn adds a column. On a table without columns the new column
// defines the row count; otherwise its length must match it.
func (t *Table) AddColumn(name string, values []any) error {
	if name == "" {
		return fmt.Errorf("%w: column name cannot be empty", domain.ErrInvalidArgument)
	}
	if _, ok := t.columns[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrColumnAlreadyExists, name)
	}
	if len(t.columns) == 0 {
		t.rowCount = len(values)
	} else if len(values) != t.rowCount {
		return fmt.Errorf("%w: column length %d does not match row count %d", domain.ErrSchemaMismatch, len(values), t.rowCount)
	}
	t.columns[name] = slices.Clone(values)
	return nil
}

// DeleteColumn removes a column if present. Removing the last column
// resets the row count.
func (t *Table) DeleteColumn(name string) error {
	if name == "" {
		return fmt.Errorf("%w: no column name specified", domain.ErrInvalidArgument)
	}
	delete(t.columns, name)
	if len(t.columns) == 0 {
		t.rowCount = 0
	}
	return nil
}

// AddRow appends one row. Once the table holds rows, the row must carry
// every existing column. On a table with declared columns but no rows, the
// columns the row leaves out get a null cell. A column the table has not
// seen before is added and back-filled for prior rows with the null
// sentinel of the new value's kind. An empty row is a no-op.
func (t *Table) AddRow(row map[string]any) error {
	if len(row) == 0 {
		return nil
	}
	for name, col := range t.columns {
		if _, ok := row[name]; ok {
			continue
		}
		if t.rowCount > 0 {
			return fmt.Errorf("%w: row is missing column %s", domain.ErrSchemaMismatch, name)
		}
		t.columns[name] = append(col, NullFor(columnKind(col)))
	}

	for name, v := range row {
		col, ok := t.columns[name]
		if !ok {
			col = nullColumn(KindOf(v), t.rowCount)
		}
		if v == nil {
			v = NullFor(columnKind(col))
		}
		t.columns[name] = append(col, v)
	}
	t.rowCount++
	return nil
}

// AddDictRow appends a row held in a Dict. Keys are used in their string
// form. A nil row is a no-op.
func (t *Table) AddDictRow(row *Dict) error {
	if row == nil {
		return nil
	}
	return t.AddRow(row.StringMap())
}

// Append adds all rows of other. Names must match, and when both tables
// hold rows their column sets must be equal. A nil or empty other is a no-op.
func (t *Table) Append(other *Table) error {
	if other == nil || other.IsEmpty() {
		return nil
	}
	if t.name != other.name {
		return fmt.Errorf("%w: table names differ (%s, %s)", domain.ErrSchemaMismatch, t.name, other.name)
	}

	if !t.IsEmpty() {
		if len(t.columns) != len(other.columns) {
			return fmt.Errorf("%w: tables have different schemas", domain.ErrSchemaMismatch)
		}
		for name := range t.columns {
			if _, ok := other.columns[name]; !ok {
				return fmt.Errorf("%w: tables have different schemas", domain.ErrSchemaMismatch)
			}
		}
	} else {
		// Columns declared on an empty table but absent from other are padded.
		for name, col := range t.columns {
			if _, ok := other.columns[name]; !ok {
				t.columns[name] = append(col, nullColumn(columnKind(col), other.rowCount)...)
			}
		}
	}

	for name, col := range other.columns {
		t.columns[name] = append(t.columns[name], col...)
	}
	t.rowCount += other.rowCount
	return nil
}

// Columns returns the column names in lexicographic order.
func (t *Table) Columns() []string {
	names := make([]string, 0, len(t.columns))
	for name := range t.columns {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Column returns a copy of the named column's values.
func (t *Table) Column(name string) ([]any, bool) {
	col, ok := t.columns[name]
	if !ok {
		return nil, false
	}
	return slices.Clone(col), true
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return t.rowCount }

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int { return len(t.columns) }

// IsEmpty reports whether the table has no rows or no columns.
func (t *Table) IsEmpty() bool {
	return t.rowCount == 0 || len(t.columns) == 0
}

// ToWire converts the table to wire form with columns in lexicographic
// order. It returns false for a table without columns, which is a valid
// state rather than a failure. A table with columns but no rows yields a
// Flip of empty columns.
func (t *Table) ToWire() (*Flip, bool) {
	if len(t.columns) == 0 {
		return nil, false
	}
	names := t.Columns()
	f := &Flip{Columns: names, Data: make([]any, len(names))}
	for i, name := range names {
		f.Data[i] = slices.Clone(t.columns[name])
	}
	return f, true
}

// Row returns row i as a Dict keyed by column name in lexicographic order.
func (t *Table) Row(i int) (*Dict, error) {
	if i < 0 || i >= t.rowCount {
		return nil, fmt.Errorf("%w: row %d of %d", domain.ErrIndexOutOfRange, i, t.rowCount)
	}
	row := NewDict()
	for _, name := range t.Columns() {
		col := t.columns[name]
		if i >= len(col) {
			return nil, fmt.Errorf("%w: column %s has %d values, row %d requested", domain.ErrSchemaMismatch, name, len(col), i)
		}
		v := col[i]
		if v == nil {
			v = GenericNull{}
		}
		row.keys = append(row.keys, name)
		row.values[name] = v
	}
	return row, nil
}

// All iterates over the rows in ascending index order. Each call to the
// returned sequence starts again from row 0. Rows are materialized lazily.
func (t *Table) All() iter.Seq2[int, *Dict] {
	return func(yield func(int, *Dict) bool) {
		for i := 0; i < t.rowCount; i++ {
			row, err := t.Row(i)
			if err != nil || !yield(i, row) {
				return
			}
		}
	}
}

// String returns a short description of the table.
func (t *Table) String() string {
	return fmt.Sprintf("%s[%d rows, %d columns]", t.name, t.rowCount, len(t.columns))
}

// TableIsNullOrEmpty reports whether t is nil or empty.
func TableIsNullOrEmpty(t *Table) bool {
	return t == nil || t.IsEmpty()
}

func nullColumn(k Kind, n int) []any {
	col := make([]any, n)
	for i := range col {
		col[i] = NullFor(k)
	}
	return col
}

func columnKind(col []any) Kind {
	for _, v := range col {
		if !IsNull(v) {
			return KindOf(v)
		}
	}
	if len(col) > 0 {
		return KindOf(col[0])
	}
	return KindAny
}
