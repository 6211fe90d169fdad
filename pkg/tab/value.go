package tab

// Value is a single table cell. The zero value is null. Table data is
// stringly typed; numeric columns are carried in their string form, the
// way they appear in source files and exports.
type Value struct {
	Str   string
	Valid bool
}

// Null is the null cell value.
var Null = Value{}

// Indicator cell values for source presence columns.
var (
	// Present marks a variant as carried by a source.
	Present = String("1")

	// Absent marks a variant as not carried by a source.
	Absent = String("0")
)

// String returns a non-null Value holding s.
func String(s string) Value {
	return Value{Str: s, Valid: true}
}

// IsNull reports whether the value is null.
func (v Value) IsNull() bool {
	return !v.Valid
}

// Or returns the held string, or fallback when the value is null.
func (v Value) Or(fallback string) string {
	if v.Valid {
		return v.Str
	}
	return fallback
}

// String implements fmt.Stringer. Null values render empty, matching
// their serialized form.
func (v Value) String() string {
	if v.Valid {
		return v.Str
	}
	return ""
}

// Row is a single record keyed by column name. A column absent from the
// map reads as null.
type Row map[string]Value

// Get returns the value in col, or Null when the column is absent.
func (r Row) Get(col string) Value {
	return r[col]
}

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
