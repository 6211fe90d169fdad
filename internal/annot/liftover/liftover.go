// Package liftover converts variant coordinates between genome
// assemblies by shelling out to a UCSC liftOver wrapper script.
//
// Rows are serialized as a headerless TSV of half-open spans, one per
// line: prefixed chromosome, zero-based start, end, reference allele,
// alternate allele, input ordinal. The wrapper receives the span file
// and the chain file, and prints the path of the lifted file to stdout:
//
//	bash lift_over.sh spans.tsv hg19ToHg38.over.chain.gz
//
// The wrapper must carry the columns after the coordinates through
// unchanged (liftOver -bedPlus=3 -tab does). Rows missing from the
// lifted file failed to lift and drop from the batch.
//
// Example usage:
//
//	lifter := liftover.NewLifter("/opt/ucsc/lift_over.sh", chainPath)
//	src := tabular.New("varicarta", path,
//	    tabular.WithPreProcess(lifter.PreProcess()))
package liftover

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alulab/vartab/internal/annot"
	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

// spanColumns is the number of columns in the span file. The trailing
// ordinal ties each lifted line back to its input row.
const spanColumns = 6

// Lifter invokes a liftOver wrapper script over batch coordinates.
type Lifter struct {
	script  string
	chain   string
	workDir string
	timeout time.Duration
}

// LifterOption configures a Lifter.
type LifterOption func(*Lifter)

// LifterWithWorkDir places the temporary span file under dir instead of
// the system temp directory.
func LifterWithWorkDir(dir string) LifterOption {
	return func(l *Lifter) {
		l.workDir = dir
	}
}

// LifterWithTimeout bounds a single wrapper invocation.
func LifterWithTimeout(d time.Duration) LifterOption {
	return func(l *Lifter) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// NewLifter creates a lifter for the given wrapper script and chain file.
func NewLifter(script, chain string, opts ...LifterOption) *Lifter {
	l := &Lifter{
		script:  script,
		chain:   chain,
		timeout: constants.LiftoverTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// PreProcess exposes the lifter as a batch preprocess step.
func (l *Lifter) PreProcess() source.PreProcessFunc {
	return l.Lift
}

// Lift converts every row's coordinates to the target assembly and
// returns a batch holding only the rows the chain file could map, in
// lifted-file order. Non-key columns ride along unchanged. An empty
// batch skips the wrapper entirely.
func (l *Lifter) Lift(ctx context.Context, batch *tab.Batch) (*tab.Batch, error) {
	if batch == nil || batch.Len() == 0 {
		return batch, nil
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	inPath, err := l.writeSpans(batch)
	if err != nil {
		return nil, err
	}
	defer os.Remove(inPath)

	resultsPath, err := annot.RunScript(ctx, "lift coordinates", l.script, inPath, l.chain)
	if err != nil {
		return nil, err
	}
	defer os.Remove(resultsPath)

	lifted, err := l.parseLifted(resultsPath, batch)
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Int("input_rows", batch.Len()).
		Int("lifted_rows", lifted.Len()).
		Int("unmapped_rows", batch.Len()-lifted.Len()).
		Msg("Coordinates lifted")
	return lifted, nil
}

// writeSpans serializes the batch as half-open spans, one row per line.
func (l *Lifter) writeSpans(batch *tab.Batch) (string, error) {
	dir := l.workDir
	if dir == "" {
		dir = os.TempDir()
	}
	f, err := os.CreateTemp(dir, "liftover-spans-*.tsv")
	if err != nil {
		return "", errors.WrapIO("create", "liftover spans", err)
	}

	w := bufio.NewWriterSize(f, constants.WriteBufferSize)
	for i, row := range batch.Rows() {
		line, serr := spanLine(row, i)
		if serr != nil {
			f.Close()
			os.Remove(f.Name())
			return "", serr
		}
		if _, werr := w.WriteString(line + "\n"); werr != nil {
			f.Close()
			os.Remove(f.Name())
			return "", errors.WrapIO("write", f.Name(), werr)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", errors.WrapIO("write", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", errors.WrapIO("close", f.Name(), err)
	}
	return f.Name(), nil
}

// spanLine converts one row to a span-file line. The chromosome gains a
// chr prefix and the 1-based position becomes a zero-based start with
// the end covering the reference allele.
func spanLine(row tab.Row, i int) (string, error) {
	chrom := strings.TrimSpace(row.Get(constants.ColumnChrom).Str)
	ref := strings.TrimSpace(row.Get(constants.ColumnRef).Str)
	alt := strings.TrimSpace(row.Get(constants.ColumnAlt).Str)
	if chrom == "" || ref == "" || alt == "" {
		return "", errors.NewFormatError("liftover",
			fmt.Sprintf("row %d: incomplete variant key", i),
			constants.ColumnChrom, constants.ColumnRef, constants.ColumnAlt)
	}

	pos, err := strconv.Atoi(strings.TrimSpace(row.Get(constants.ColumnPos).Str))
	if err != nil {
		return "", errors.NewFormatError("liftover",
			fmt.Sprintf("row %d: position is not a number: %s", i, row.Get(constants.ColumnPos).Str),
			constants.ColumnPos)
	}

	start := pos - 1
	end := start + len(ref)
	cells := []string{
		"chr" + strings.TrimPrefix(chrom, "chr"),
		strconv.Itoa(start),
		strconv.Itoa(end),
		ref,
		alt,
		strconv.Itoa(i),
	}
	return strings.Join(cells, "\t"), nil
}

// parseLifted reads the lifted span file back and rebuilds rows from
// the input batch, replacing coordinates with the lifted ones.
func (l *Lifter) parseLifted(path string, batch *tab.Batch) (*tab.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	out := tab.NewBatch(batch.Columns()...)

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < spanColumns {
			return nil, &errors.ParseError{
				Format:  "liftover",
				File:    path,
				Line:    line,
				Message: fmt.Sprintf("expected %d columns, got %d", spanColumns, len(fields)),
			}
		}

		start, serr := strconv.Atoi(fields[1])
		if serr != nil {
			return nil, &errors.ParseError{
				Format:  "liftover",
				File:    path,
				Line:    line,
				Message: "start is not a number: " + fields[1],
			}
		}
		idx, ierr := strconv.Atoi(fields[spanColumns-1])
		if ierr != nil || idx < 0 || idx >= batch.Len() {
			return nil, &errors.ParseError{
				Format:  "liftover",
				File:    path,
				Line:    line,
				Message: "ordinal does not match an input row: " + fields[spanColumns-1],
			}
		}

		row := batch.Row(idx).Clone()
		row[constants.ColumnChrom] = tab.String(strings.TrimPrefix(fields[0], "chr"))
		row[constants.ColumnPos] = tab.String(strconv.Itoa(start + 1))
		row[constants.ColumnRef] = tab.String(fields[3])
		row[constants.ColumnAlt] = tab.String(fields[4])
		out.Append(row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapParse("liftover", path, err)
	}
	return out, nil
}
