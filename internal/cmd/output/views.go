package output

import (
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter/tw"

	"github.com/alulab/vartab/pkg/merge"
	"github.com/alulab/vartab/pkg/tab"
)

// Stats renders merge statistics in the requested format. Table output
// shows the core counters; wide adds the table dimensions and timing.
func Stats(w io.Writer, format Format, stats []*merge.Stats) error {
	formatter := NewFormatter(format)

	var data any
	switch format {
	case FormatTable, FormatWide, "":
		data = statsToTableData(stats, format == FormatWide)
	default:
		data = stats
	}

	return formatter.Format(w, data)
}

func statsToTableData(stats []*merge.Stats, wide bool) Data {
	headers := []string{"Source", "Loaded", "Existing", "New", "Dropped"}
	if wide {
		headers = append(headers, "Duplicates", "Rows", "Columns", "Duration")
	}
	align := make([]tw.Align, len(headers))
	for i := range align {
		align[i] = tw.AlignRight
	}
	align[0] = tw.AlignLeft

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		row := []string{
			s.Source,
			strconv.Itoa(s.Loaded),
			strconv.Itoa(s.Existing),
			strconv.Itoa(s.New),
			strconv.Itoa(s.Dropped),
		}
		if wide {
			row = append(row,
				strconv.Itoa(s.Duplicates),
				strconv.Itoa(s.Rows),
				strconv.Itoa(s.Columns),
				s.Duration.Round(time.Millisecond).String(),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// Preview renders the first limit rows of a table. A limit of 0 or less
// shows every row.
func Preview(w io.Writer, format Format, t *tab.Table, limit int) error {
	n := t.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	cols := t.Columns()

	formatter := NewFormatter(format)
	switch format {
	case FormatJSON, FormatYAML:
		// Nulls stay distinguishable from empty strings here.
		records := make([]map[string]any, 0, n)
		for i := 0; i < n; i++ {
			rec := make(map[string]any, len(cols))
			for _, c := range cols {
				v := t.Value(i, c)
				if v.IsNull() {
					rec[c] = nil
				} else {
					rec[c] = v.Str
				}
			}
			records = append(records, rec)
		}
		return formatter.Format(w, records)
	default:
		rows := make([][]string, 0, n)
		for i := 0; i < n; i++ {
			row := make([]string, len(cols))
			for j, c := range cols {
				row[j] = t.Value(i, c).Str
			}
			rows = append(rows, row)
		}
		return formatter.Format(w, Data{Headers: cols, Rows: rows})
	}
}

// Any renders arbitrary data in the requested format.
func Any(w io.Writer, format Format, data any) error {
	return NewFormatter(format).Format(w, data)
}
