// Package tab provides the consolidated variant table data model: nullable
// string cells, key schemas, raw source batches, and the merged table with
// its key index and ordering guarantees.
//
// The table holds at most one row per key. Key columns always lead the
// column order; every other column keeps the position it had when first
// acquired. Rows keep insertion order: rows admitted by earlier merges
// always precede rows admitted by later ones.
package tab

import (
	"fmt"

	"github.com/alulab/vartab/pkg/errors"
)

// Table is the consolidated variant relation.
type Table struct {
	schema Schema
	cols   []string
	colSet map[string]struct{}
	rows   []Row
	index  map[Key]int
}

// New creates an empty table over the given key schema.
func New(schema Schema) *Table {
	t := &Table{
		schema: schema,
		colSet: make(map[string]struct{}),
		index:  make(map[Key]int),
	}
	for _, c := range schema.cols {
		t.addColumn(c)
	}
	return t
}

// FromBatch builds a table from a batch, enforcing key uniqueness. When
// the batch holds duplicate keys, the first occurrence wins.
func FromBatch(schema Schema, b *Batch) (*Table, error) {
	t := New(schema)
	t.AddColumns(b.Columns())
	for _, r := range b.Rows() {
		k, err := schema.KeyOf(r)
		if err != nil {
			return nil, err
		}
		if _, dup := t.index[k]; dup {
			continue
		}
		t.rows = append(t.rows, r.Clone())
		t.index[k] = len(t.rows) - 1
	}
	return t, nil
}

func (t *Table) addColumn(c string) bool {
	if _, ok := t.colSet[c]; ok {
		return false
	}
	t.colSet[c] = struct{}{}
	t.cols = append(t.cols, c)
	return true
}

// Schema returns the table's key schema.
func (t *Table) Schema() Schema {
	return t.schema
}

// Columns returns the column order: key columns first, then remaining
// columns in first-acquired order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// HasColumn reports whether the table carries col.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.colSet[col]
	return ok
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.rows)
}

// EnsureColumn adds col if absent, assigning def to all existing rows.
// Returns true when the column was added.
func (t *Table) EnsureColumn(col string, def Value) bool {
	if !t.addColumn(col) {
		return false
	}
	if !def.IsNull() {
		for _, r := range t.rows {
			r[col] = def
		}
	}
	return true
}

// AddColumns extends the column order with any unseen columns, in the
// given order. Existing rows read null in the new columns.
func (t *Table) AddColumns(cols []string) {
	for _, c := range cols {
		t.addColumn(c)
	}
}

// Value returns the cell at row i, column col. Out-of-range access and
// unknown columns read null.
func (t *Table) Value(i int, col string) Value {
	if i < 0 || i >= len(t.rows) {
		return Null
	}
	if _, ok := t.colSet[col]; !ok {
		return Null
	}
	return t.rows[i].Get(col)
}

// Set writes the cell at row i, column col. The column must already be
// part of the table.
func (t *Table) Set(i int, col string, v Value) error {
	if i < 0 || i >= len(t.rows) {
		return fmt.Errorf("row %d out of range [0,%d)", i, len(t.rows))
	}
	if _, ok := t.colSet[col]; !ok {
		return fmt.Errorf("%w: column %s", errors.ErrNotFound, col)
	}
	t.rows[i][col] = v
	return nil
}

// Lookup returns the position of the row holding key k.
func (t *Table) Lookup(k Key) (int, bool) {
	i, ok := t.index[k]
	return i, ok
}

// KeyOf derives the key of row i.
func (t *Table) KeyOf(i int) (Key, error) {
	if i < 0 || i >= len(t.rows) {
		return "", fmt.Errorf("row %d out of range [0,%d)", i, len(t.rows))
	}
	return t.schema.KeyOf(t.rows[i])
}

// Append adds a row after all existing rows. The row must carry a
// complete key that is not already present.
func (t *Table) Append(r Row) error {
	k, err := t.schema.KeyOf(r)
	if err != nil {
		return err
	}
	if _, dup := t.index[k]; dup {
		return fmt.Errorf("%w: key for row %v", errors.ErrAlreadyExists, r)
	}
	t.rows = append(t.rows, r)
	t.index[k] = len(t.rows) - 1
	return nil
}

// Row returns a copy of row i, or nil when out of range.
func (t *Table) Row(i int) Row {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return t.rows[i].Clone()
}

// Each calls fn for every row in order until fn returns false. The row
// passed to fn is live; callers must not retain it.
func (t *Table) Each(fn func(i int, r Row) bool) {
	for i, r := range t.rows {
		if !fn(i, r) {
			return
		}
	}
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	nt := New(t.schema)
	nt.AddColumns(t.cols)
	nt.rows = make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		nt.rows = append(nt.rows, r.Clone())
	}
	for k, i := range t.index {
		nt.index[k] = i
	}
	return nt
}
