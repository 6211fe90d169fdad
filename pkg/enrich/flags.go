package enrich

import (
	"context"
	"strconv"

	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tab"
)

var (
	_ Enricher = (*ADARFlag)(nil)
	_ Enricher = (*APOBECFlag)(nil)
	_ Enricher = (*SourceCount)(nil)
)

// ADARFlag marks variants whose mismatch ADAR-mediated A-to-I editing
// could repair: a G>A change on the plus strand or C>T on the minus
// strand.
type ADARFlag struct{}

// Name returns the enricher name.
func (ADARFlag) Name() string { return "adar" }

// Column returns the written column.
func (ADARFlag) Column() string { return constants.ColumnADAR }

// Enrich computes the flag for every row.
func (ADARFlag) Enrich(_ context.Context, t *tab.Table) error {
	return strandFlag(t, "adar", constants.ColumnADAR, "G", "A", "C", "T")
}

// APOBECFlag marks variants whose mismatch APOBEC-mediated C-to-U editing
// could repair: a T>C change on the plus strand or A>G on the minus
// strand.
type APOBECFlag struct{}

// Name returns the enricher name.
func (APOBECFlag) Name() string { return "apobec" }

// Column returns the written column.
func (APOBECFlag) Column() string { return constants.ColumnAPOBEC }

// Enrich computes the flag for every row.
func (APOBECFlag) Enrich(_ context.Context, t *tab.Table) error {
	return strandFlag(t, "apobec", constants.ColumnAPOBEC, "T", "C", "A", "G")
}

// strandFlag writes "1" where the ref/alt pair matches the change the
// editing enzyme produces on the annotated strand, "0" everywhere else.
// Rows without a strand annotation read "0".
func strandFlag(t *tab.Table, name, col, plusRef, plusAlt, minusRef, minusAlt string) error {
	if t == nil {
		return errors.ErrNoTable
	}
	if !t.HasColumn(constants.ColumnStrand) {
		return errors.NewFormatError(name, "table lacks the strand annotation", constants.ColumnStrand)
	}
	t.EnsureColumn(col, tab.Absent)
	t.Each(func(_ int, r tab.Row) bool {
		strand := r.Get(constants.ColumnStrand).Str
		ref := r.Get(constants.ColumnRef).Str
		alt := r.Get(constants.ColumnAlt).Str
		fixable := (strand == "1" && ref == plusRef && alt == plusAlt) ||
			(strand == "-1" && ref == minusRef && alt == minusAlt)
		if fixable {
			r[col] = tab.Present
		} else {
			r[col] = tab.Absent
		}
		return true
	})
	return nil
}

// SourceCount writes the number of listed indicator columns that carry
// each variant.
type SourceCount struct {
	columns []string
}

// NewSourceCount creates a counter over the given indicator columns.
func NewSourceCount(columns ...string) *SourceCount {
	return &SourceCount{columns: columns}
}

// Name returns the enricher name.
func (s *SourceCount) Name() string { return "source_count" }

// Column returns the written column.
func (s *SourceCount) Column() string { return constants.ColumnSourceCount }

// Enrich counts indicator hits per row.
func (s *SourceCount) Enrich(_ context.Context, t *tab.Table) error {
	if t == nil {
		return errors.ErrNoTable
	}
	if len(s.columns) == 0 {
		return errors.NewConfigError("columns", s.columns, "at least one indicator column required")
	}
	var missing []string
	for _, c := range s.columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return errors.NewFormatError(s.Name(), "table lacks indicator columns", missing...)
	}

	t.EnsureColumn(constants.ColumnSourceCount, tab.Null)
	t.Each(func(_ int, r tab.Row) bool {
		count := 0
		for _, c := range s.columns {
			if r.Get(c) == tab.Present {
				count++
			}
		}
		r[constants.ColumnSourceCount] = tab.String(strconv.Itoa(count))
		return true
	})
	return nil
}
