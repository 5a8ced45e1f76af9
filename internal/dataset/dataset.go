package dataset

import (
	"fmt"

	"smartsales/internal/errors"
)

// Column describes one named, typed column of a dataset.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the ordered set of columns a dataset carries. It is declared up
// front so that references to unknown columns fail at the operation boundary
// instead of deep inside a pipeline.
type Schema []Column

// Index returns the position of the named column, or a COLUMN_NOT_FOUND error.
func (s Schema) Index(name string) (int, error) {
	for i, c := range s {
		if c.Name == name {
			return i, nil
		}
	}
	return -1, errors.NewColumnNotFoundError(name)
}

// Names returns the column names in declaration order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Clone returns an independent copy of the schema.
func (s Schema) Clone() Schema {
	out := make(Schema, len(s))
	copy(out, s)
	return out
}

// Dataset is an ordered sequence of records sharing one schema. Every record
// holds exactly one value per column; insertion order is preserved by all
// operations unless documented otherwise.
type Dataset struct {
	schema Schema
	rows   [][]Value
}

// New creates an empty dataset with the given schema.
func New(schema Schema) *Dataset {
	return &Dataset{schema: schema.Clone()}
}

// Schema returns the dataset's schema.
func (d *Dataset) Schema() Schema { return d.schema }

// RowCount returns the number of records.
func (d *Dataset) RowCount() int { return len(d.rows) }

// ColumnCount returns the number of columns.
func (d *Dataset) ColumnCount() int { return len(d.schema) }

// Append adds one record. The record must have one value per column, and each
// non-null value must match the declared column kind.
func (d *Dataset) Append(row ...Value) error {
	if len(row) != len(d.schema) {
		return errors.NewAppValidationError(
			fmt.Sprintf("record has %d values, schema declares %d columns", len(row), len(d.schema)))
	}
	for i, v := range row {
		if !v.IsNull() && v.Kind() != d.schema[i].Kind {
			return errors.NewAppValidationError(
				fmt.Sprintf("column %q declared %s, got %s", d.schema[i].Name, d.schema[i].Kind, v.Kind()))
		}
	}
	stored := make([]Value, len(row))
	copy(stored, row)
	d.rows = append(d.rows, stored)
	return nil
}

// Row returns the record at index i. The returned slice is the backing
// storage; callers must not keep it across mutating operations.
func (d *Dataset) Row(i int) []Value { return d.rows[i] }

// At returns the value at row i in the named column.
func (d *Dataset) At(i int, column string) (Value, error) {
	idx, err := d.schema.Index(column)
	if err != nil {
		return Value{}, err
	}
	return d.rows[i][idx], nil
}

// Set replaces the value at row i in the named column. The new value must be
// null or match the declared column kind.
func (d *Dataset) Set(i int, column string, v Value) error {
	idx, err := d.schema.Index(column)
	if err != nil {
		return err
	}
	if !v.IsNull() && v.Kind() != d.schema[idx].Kind {
		return errors.NewAppValidationError(
			fmt.Sprintf("column %q declared %s, got %s", column, d.schema[idx].Kind, v.Kind()))
	}
	d.rows[i][idx] = v
	return nil
}

// Index returns the position of the named column.
func (d *Dataset) Index(name string) (int, error) {
	return d.schema.Index(name)
}

// Filter removes every record for which keep returns false, preserving the
// order of the remaining records, and returns the number removed.
func (d *Dataset) Filter(keep func(i int, row []Value) bool) int {
	kept := d.rows[:0]
	for i, row := range d.rows {
		if keep(i, row) {
			kept = append(kept, row)
		}
	}
	removed := len(d.rows) - len(kept)
	d.rows = kept
	return removed
}

// RenameColumn changes the name of one column in place.
func (d *Dataset) RenameColumn(old, new string) error {
	idx, err := d.schema.Index(old)
	if err != nil {
		return err
	}
	d.schema[idx].Name = new
	return nil
}

// SetColumnKind redeclares the kind of one column. Existing values are not
// converted; callers are responsible for having rewritten them first.
func (d *Dataset) SetColumnKind(name string, kind Kind) error {
	idx, err := d.schema.Index(name)
	if err != nil {
		return err
	}
	d.schema[idx].Kind = kind
	return nil
}

// Reorder rearranges the columns into the given order. Every declared column
// must appear exactly once.
func (d *Dataset) Reorder(order []string) error {
	if len(order) != len(d.schema) {
		return errors.NewAppValidationError(
			fmt.Sprintf("reorder lists %d columns, schema declares %d", len(order), len(d.schema)))
	}
	indices := make([]int, len(order))
	seen := make(map[string]struct{}, len(order))
	for i, name := range order {
		if _, dup := seen[name]; dup {
			return errors.NewAppValidationError(fmt.Sprintf("column %q listed twice in reorder", name))
		}
		seen[name] = struct{}{}
		idx, err := d.schema.Index(name)
		if err != nil {
			return err
		}
		indices[i] = idx
	}

	newSchema := make(Schema, len(order))
	for i, idx := range indices {
		newSchema[i] = d.schema[idx]
	}
	for r, row := range d.rows {
		newRow := make([]Value, len(indices))
		for i, idx := range indices {
			newRow[i] = row[idx]
		}
		d.rows[r] = newRow
	}
	d.schema = newSchema
	return nil
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	out := New(d.schema)
	out.rows = make([][]Value, len(d.rows))
	for i, row := range d.rows {
		cp := make([]Value, len(row))
		copy(cp, row)
		out.rows[i] = cp
	}
	return out
}

// RowKey renders the values at the given column indices as a single
// deterministic key, used for duplicate detection.
func (d *Dataset) RowKey(i int, indices []int) string {
	key := ""
	for _, idx := range indices {
		key += d.rows[i][idx].key() + "\x1f"
	}
	return key
}
