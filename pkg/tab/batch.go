package tab

// Batch is a rectangular set of rows as loaded from a source, before key
// uniqueness is established. Column order is declaration order; rows may
// hold values only for declared columns.
type Batch struct {
	cols   []string
	colSet map[string]struct{}
	rows   []Row
}

// NewBatch creates an empty batch with the given columns.
func NewBatch(cols ...string) *Batch {
	b := &Batch{colSet: make(map[string]struct{}, len(cols))}
	for _, c := range cols {
		b.addColumn(c)
	}
	return b
}

func (b *Batch) addColumn(c string) {
	if _, ok := b.colSet[c]; ok {
		return
	}
	b.colSet[c] = struct{}{}
	b.cols = append(b.cols, c)
}

// Columns returns the batch's column order.
func (b *Batch) Columns() []string {
	return append([]string(nil), b.cols...)
}

// HasColumn reports whether the batch declares col.
func (b *Batch) HasColumn(col string) bool {
	_, ok := b.colSet[col]
	return ok
}

// EnsureColumn declares col at the end of the column order if missing.
func (b *Batch) EnsureColumn(col string) {
	b.addColumn(col)
}

// Len returns the number of rows.
func (b *Batch) Len() int {
	return len(b.rows)
}

// Row returns the i-th row. The returned map is live.
func (b *Batch) Row(i int) Row {
	return b.rows[i]
}

// Rows returns the live row slice.
func (b *Batch) Rows() []Row {
	return b.rows
}

// Append adds a row. Values under undeclared columns are invisible until
// the column is declared.
func (b *Batch) Append(r Row) {
	b.rows = append(b.rows, r)
}

// SetAll assigns v to col on every row, declaring the column if needed.
func (b *Batch) SetAll(col string, v Value) {
	b.addColumn(col)
	for _, r := range b.rows {
		r[col] = v
	}
}

// Project returns a copy of the batch reduced to the given columns.
func (b *Batch) Project(cols ...string) *Batch {
	out := NewBatch(cols...)
	for _, r := range b.rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Append(nr)
	}
	return out
}

// Clone returns a deep copy of the batch.
func (b *Batch) Clone() *Batch {
	out := NewBatch(b.cols...)
	for _, r := range b.rows {
		out.Append(r.Clone())
	}
	return out
}
