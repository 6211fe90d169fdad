package tab

import (
	"fmt"
	"strings"

	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
)

// keySep joins key values into a Key. The unit separator never occurs in
// variant fields.
const keySep = "\x1f"

// Key is the joined identity of a row under a schema.
type Key string

// Schema is the ordered set of key columns that identify a record.
type Schema struct {
	cols []string
}

// Default returns the canonical chr/pos/ref/alt key schema.
func Default() Schema {
	return Schema{cols: []string{
		constants.ColumnChrom,
		constants.ColumnPos,
		constants.ColumnRef,
		constants.ColumnAlt,
	}}
}

// NewSchema builds a key schema from the given column names. Columns must
// be non-empty and unique.
func NewSchema(cols ...string) (Schema, error) {
	if len(cols) == 0 {
		return Schema{}, errors.NewConfigError("keys", cols, "at least one key column required")
	}
	seen := make(map[string]struct{}, len(cols))
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		c = strings.TrimSpace(c)
		if c == "" {
			return Schema{}, errors.NewConfigError("keys", cols, "empty key column name")
		}
		if _, dup := seen[c]; dup {
			return Schema{}, errors.NewConfigError("keys", c, "duplicate key column")
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return Schema{cols: out}, nil
}

// Columns returns the key columns in order.
func (s Schema) Columns() []string {
	return append([]string(nil), s.cols...)
}

// Len returns the number of key columns.
func (s Schema) Len() int {
	return len(s.cols)
}

// IsZero reports whether the schema is unset.
func (s Schema) IsZero() bool {
	return len(s.cols) == 0
}

// Contains reports whether col is a key column.
func (s Schema) Contains(col string) bool {
	for _, c := range s.cols {
		if c == col {
			return true
		}
	}
	return false
}

// KeyOf derives the row's key. Every key column must hold a non-null,
// non-empty value for the row to participate in a merge.
func (s Schema) KeyOf(r Row) (Key, error) {
	parts := make([]string, len(s.cols))
	for i, col := range s.cols {
		v := r.Get(col)
		if v.IsNull() || v.Str == "" {
			return "", fmt.Errorf("%w: null value in key column %s", errors.ErrInvalidInput, col)
		}
		parts[i] = v.Str
	}
	return Key(strings.Join(parts, keySep)), nil
}
