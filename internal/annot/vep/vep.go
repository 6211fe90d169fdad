// Package vep runs the Ensembl Variant Effect Predictor through a
// caller-supplied wrapper script and joins the resulting annotations
// onto variant batches.
//
// The wrapper receives the path of a headerless TSV holding one variant
// per line (chr, pos, ref, alt) and a suggested output path, and prints
// the path of the finished results file to stdout:
//
//	bash vep_ann.sh input.tsv output.txt
//
// Example usage:
//
//	runner := vep.NewRunner("/opt/vep/vep_ann.sh")
//	batch, err := runner.Annotate(ctx, batch)
//	if err != nil {
//	    return err
//	}
package vep

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"github.com/alulab/vartab/internal/annot"
	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

// Runner invokes a VEP wrapper script over batch keys.
type Runner struct {
	script  string
	workDir string
	timeout time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// RunnerWithWorkDir places the temporary input and output files under
// dir instead of the system temp directory.
func RunnerWithWorkDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.workDir = dir
	}
}

// RunnerWithTimeout bounds a single wrapper invocation.
func RunnerWithTimeout(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRunner creates a runner for the given wrapper script.
func NewRunner(script string, opts ...RunnerOption) *Runner {
	r := &Runner{
		script:  script,
		timeout: constants.AnnotationTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Annotation exposes the runner as a named annotation step.
func (r *Runner) Annotation() source.Annotation {
	return source.Annotation{Name: "vep", Apply: r.Annotate}
}

// Annotate runs the wrapper over the batch keys and returns the inner
// join of the batch with the parsed annotations. Variants absent from
// the VEP output drop; annotation values overwrite same-named batch
// columns. An empty batch skips the wrapper entirely.
func (r *Runner) Annotate(ctx context.Context, batch *tab.Batch) (*tab.Batch, error) {
	if batch == nil || batch.Len() == 0 {
		return batch, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	inPath, err := r.writeInput(batch)
	if err != nil {
		return nil, err
	}
	defer os.Remove(inPath)

	out, err := os.CreateTemp(r.dir(), "vep-results-*.txt")
	if err != nil {
		return nil, errors.WrapIO("create", "vep results", err)
	}
	outPath := out.Name()
	out.Close()
	defer os.Remove(outPath)

	resultsPath, err := annot.RunScript(ctx, "annotate variants", r.script, inPath, outPath)
	if err != nil {
		return nil, err
	}
	if resultsPath != outPath {
		defer os.Remove(resultsPath)
	}

	results, err := ParseResults(resultsPath)
	if err != nil {
		return nil, err
	}

	joined := join(batch, results)
	logging.Ctx(ctx).Info().
		Int("input_rows", batch.Len()).
		Int("vep_rows", results.Len()).
		Int("joined_rows", joined.Len()).
		Msg("VEP annotations joined")
	return joined, nil
}

func (r *Runner) dir() string {
	if r.workDir != "" {
		return r.workDir
	}
	return os.TempDir()
}

// writeInput serializes the batch keys as a headerless TSV, one variant
// per line, whitespace trimmed.
func (r *Runner) writeInput(batch *tab.Batch) (string, error) {
	f, err := os.CreateTemp(r.dir(), "vep-input-*.tsv")
	if err != nil {
		return "", errors.WrapIO("create", "vep input", err)
	}

	w := bufio.NewWriterSize(f, constants.WriteBufferSize)
	keyCols := tab.Default().Columns()
	cells := make([]string, len(keyCols))
	for _, row := range batch.Rows() {
		for i, c := range keyCols {
			cells[i] = strings.TrimSpace(row.Get(c).String())
		}
		if _, werr := w.WriteString(strings.Join(cells, "\t") + "\n"); werr != nil {
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

// join inner-joins the batch with the parsed VEP rows on the canonical
// key columns, whitespace trimmed on both sides. Joined rows carry the
// trimmed key cells.
func join(batch, results *tab.Batch) *tab.Batch {
	keyCols := tab.Default().Columns()

	index := make(map[string]tab.Row, results.Len())
	for _, row := range results.Rows() {
		k, ok := joinKey(row, keyCols)
		if !ok {
			continue
		}
		if _, dup := index[k]; dup {
			continue
		}
		index[k] = row
	}

	annCols := make([]string, 0, len(results.Columns()))
	for _, c := range results.Columns() {
		if !tab.Default().Contains(c) {
			annCols = append(annCols, c)
		}
	}

	cols := append([]string{}, batch.Columns()...)
	for _, c := range annCols {
		if !batch.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	joined := tab.NewBatch(cols...)

	for _, row := range batch.Rows() {
		k, ok := joinKey(row, keyCols)
		if !ok {
			continue
		}
		ann, ok := index[k]
		if !ok {
			continue
		}
		merged := row.Clone()
		for _, c := range keyCols {
			merged[c] = tab.String(strings.TrimSpace(row.Get(c).String()))
		}
		for _, c := range annCols {
			if v := ann.Get(c); !v.IsNull() {
				merged[c] = v
			}
		}
		joined.Append(merged)
	}
	return joined
}

// joinKey builds the trimmed join key, reporting false when any key
// cell is null or blank.
func joinKey(r tab.Row, keyCols []string) (string, bool) {
	parts := make([]string, 0, len(keyCols))
	for _, c := range keyCols {
		v := r.Get(c)
		if v.IsNull() {
			return "", false
		}
		s := strings.TrimSpace(v.String())
		if s == "" {
			return "", false
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ":"), true
}
