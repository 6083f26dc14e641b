// Package table provides the columnar Table and ordered Dict models that
// bridge wire-format records and row/column application access.
//
// A [Table] is column-major: a name, a set of named columns and a row count.
// Incoming data arrives as a [Flip] (column names plus one value slice per
// column) and outgoing data is produced by [Table.ToWire]. Rows are
// materialized on demand as [Dict] values whose keys are the column names in
// lexicographic order.
//
// Dicts never hold a nil value. Values that are legitimately absent are
// stored as type-specific null sentinels, see [NullFor] and [IsNull].
//
// Neither type is safe for concurrent mutation.
package table
