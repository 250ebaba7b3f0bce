package table

import (
	"fmt"
	"iter"
	"slices"
)

// Table is an ordered collection of records over named columns.
type Table struct {
	Name string

	columns  []string
	colIndex map[string]int
	rows     [][]Value
}

// New creates an empty table. Column names must be unique and non-empty.
func New(name string, columns ...string) (*Table, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return nil, fmt.Errorf("table %s: column %d has no name", name, i)
		}
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("table %s: duplicate column %q", name, c)
		}
		idx[c] = i
	}
	return &Table{
		Name:     name,
		columns:  slices.Clone(columns),
		colIndex: idx,
	}, nil
}

// FromRows builds a table from literal rows.
// Each row must have exactly one value per column.
func FromRows(name string, columns []string, rows ...[]Value) (*Table, error) {
	t, err := New(name, columns...)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := t.Append(row...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Append adds a record at the next position.
// Nil values are stored as Missing.
func (t *Table) Append(values ...Value) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("table %s: row %d has %d values, want %d", t.Name, len(t.rows), len(values), len(t.columns))
	}
	row := make([]Value, len(values))
	for i, v := range values {
		if v == nil {
			v = Missing{}
		}
		row[i] = v
	}
	t.rows = append(t.rows, row)
	return nil
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.rows)
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return slices.Clone(t.columns)
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.colIndex[name]
	return ok
}

// Record returns the record at pos. It panics if pos is out of range.
func (t *Table) Record(pos int) Record {
	return Record{pos: pos, table: t}
}

// All iterates over records in position order.
func (t *Table) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for pos := range t.rows {
			if !yield(Record{pos: pos, table: t}) {
				return
			}
		}
	}
}

// Record is a read-only view of one row.
type Record struct {
	pos   int
	table *Table
}

// Position returns the record's 0-based ordinal position in its table.
func (r Record) Position() int {
	return r.pos
}

// Get returns the value of field. The boolean is false if the table has no
// such column.
func (r Record) Get(field string) (Value, bool) {
	i, ok := r.table.colIndex[field]
	if !ok {
		return nil, false
	}
	return r.table.rows[r.pos][i], true
}

// Map returns the record as a column → value map.
func (r Record) Map() map[string]Value {
	m := make(map[string]Value, len(r.table.columns))
	for i, c := range r.table.columns {
		m[c] = r.table.rows[r.pos][i]
	}
	return m
}
