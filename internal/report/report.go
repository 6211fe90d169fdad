// Package report renders a build run as a markdown document: per source
// merge statistics, validation coverage, the enrichment columns written,
// and the final table dimensions.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/utc"
	md "github.com/nao1215/markdown"

	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/merge"
)

// Report collects what a build run did.
type Report struct {
	// Table is the exported table path, empty when nothing was written.
	Table string
	// Format is the export format.
	Format string
	// Rows and Columns are the final table dimensions.
	Rows    int
	Columns int
	// Merges holds per contributor statistics in merge order.
	Merges []*merge.Stats
	// Validations holds per validator statistics in run order.
	Validations []*merge.Stats
	// Enrichments lists the enrichment columns written, in run order.
	Enrichments []string
	// FinishedAt is when the build completed.
	FinishedAt utc.Time
}

// PathFor places a report next to an exported table: out/variants.csv
// becomes out/variants_report.md.
func PathFor(table string) string {
	base := strings.TrimSuffix(table, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_report.md"
}

// WriteFile renders the report at path.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}

// Write renders the report as markdown.
func (r *Report) Write(w io.Writer) error {
	doc := md.NewMarkdown(w)
	doc.H1("Variant Table Build").LF()
	doc.PlainTextf("Finished %s.", r.FinishedAt.Format("2006-01-02 15:04:05 UTC")).LF()

	doc.H2("Table").LF()
	items := []string{fmt.Sprintf("%d rows, %d columns", r.Rows, r.Columns)}
	if r.Table != "" {
		items = append(items, fmt.Sprintf("exported to %s (%s)", r.Table, r.Format))
	}
	doc.BulletList(items...).LF()

	if len(r.Merges) > 0 {
		doc.H2("Sources").LF()
		rows := make([][]string, 0, len(r.Merges))
		for _, s := range r.Merges {
			rows = append(rows, []string{
				s.Source,
				strconv.Itoa(s.Loaded),
				strconv.Itoa(s.Existing),
				strconv.Itoa(s.New),
				strconv.Itoa(s.Dropped),
				strconv.Itoa(s.Duplicates),
				duration(s.Duration),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Source", "Loaded", "Existing", "New", "Dropped", "Duplicates", "Duration"},
			Rows:   rows,
		})
	}

	if len(r.Validations) > 0 {
		doc.H2("Validation").LF()
		rows := make([][]string, 0, len(r.Validations))
		for _, s := range r.Validations {
			rows = append(rows, []string{
				s.Source,
				strconv.Itoa(s.Loaded),
				strconv.Itoa(s.Existing),
				strconv.Itoa(s.Duplicates),
				duration(s.Duration),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Source", "Loaded", "Matched", "Duplicates", "Duration"},
			Rows:   rows,
		})
	}

	if len(r.Enrichments) > 0 {
		doc.H2("Enrichment").LF()
		doc.PlainText("Columns written, in run order:").LF()
		doc.BulletList(r.Enrichments...).LF()
	}

	return doc.Build()
}

func duration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
