package liftover_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alulab/vartab/internal/annot/liftover"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tab"
)

func spanBatch(rows ...tab.Row) *tab.Batch {
	b := tab.NewBatch("chr", "pos", "ref", "alt", "significance")
	for _, r := range rows {
		b.Append(r)
	}
	return b
}

func span(chr, pos, ref, alt, significance string) tab.Row {
	return tab.Row{
		"chr":          tab.String(chr),
		"pos":          tab.String(pos),
		"ref":          tab.String(ref),
		"alt":          tab.String(alt),
		"significance": tab.String(significance),
	}
}

func TestLifterLift(t *testing.T) {
	t.Run("lifts coordinates and keeps extra columns", func(t *testing.T) {
		dir := t.TempDir()
		work := t.TempDir()
		captured := filepath.Join(dir, "captured.tsv")
		chainArg := filepath.Join(dir, "chain_arg.txt")
		lifted := filepath.Join(dir, "lifted.tsv")
		chain := filepath.Join(dir, "hg19ToHg38.over.chain.gz")

		content := "chr1\t880406\t880407\tC\tA\t0\n" +
			"chr2\t499\t501\tCT\tT\t1\n"
		require.NoError(t, os.WriteFile(lifted, []byte(content), 0o644))

		script := filepath.Join(dir, "lift_over.sh")
		body := "#!/bin/bash\n" +
			"cp \"$1\" \"" + captured + "\"\n" +
			"printf '%s\\n' \"$2\" > \"" + chainArg + "\"\n" +
			"echo \"" + lifted + "\"\n"
		require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

		batch := spanBatch(
			span("1", "880107", "C", "A", "pathogenic"),
			span("chr2", "200", "CT", "T", "benign"),
			span("3", "300", "G", "A", "uncertain"),
		)

		lifter := liftover.NewLifter(script, chain, liftover.LifterWithWorkDir(work))
		out, err := lifter.Lift(context.Background(), batch)
		require.NoError(t, err)
		require.Equal(t, 2, out.Len())

		first := out.Row(0)
		assert.Equal(t, "1", first.Get("chr").String())
		assert.Equal(t, "880407", first.Get("pos").String())
		assert.Equal(t, "C", first.Get("ref").String())
		assert.Equal(t, "pathogenic", first.Get("significance").String())

		second := out.Row(1)
		assert.Equal(t, "2", second.Get("chr").String(), "chr prefix is stripped on the way back")
		assert.Equal(t, "500", second.Get("pos").String(), "positions come back 1-based")
		assert.Equal(t, "benign", second.Get("significance").String())

		got, rerr := os.ReadFile(captured)
		require.NoError(t, rerr)
		want := "chr1\t880106\t880107\tC\tA\t0\n" +
			"chr2\t199\t201\tCT\tT\t1\n" +
			"chr3\t299\t300\tG\tA\t2\n"
		assert.Equal(t, want, string(got), "spans are prefixed, zero-based, half-open")

		arg, aerr := os.ReadFile(chainArg)
		require.NoError(t, aerr)
		assert.Equal(t, chain+"\n", string(arg))

		entries, derr := os.ReadDir(work)
		require.NoError(t, derr)
		assert.Empty(t, entries, "span temp file is cleaned up")
	})

	t.Run("empty batch skips the wrapper", func(t *testing.T) {
		lifter := liftover.NewLifter(filepath.Join(t.TempDir(), "missing.sh"), "chain.gz")
		batch := spanBatch()

		out, err := lifter.Lift(context.Background(), batch)
		require.NoError(t, err)
		assert.Same(t, batch, out)
	})

	t.Run("wrapper failure surfaces as a process error", func(t *testing.T) {
		dir := t.TempDir()
		script := filepath.Join(dir, "lift_over.sh")
		body := "#!/bin/bash\necho \"liftOver: cannot open chain\" >&2\nexit 1\n"
		require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

		lifter := liftover.NewLifter(script, "chain.gz", liftover.LifterWithWorkDir(dir))
		_, err := lifter.Lift(context.Background(), spanBatch(span("1", "100", "A", "G", "x")))

		var perr *errors.ProcessError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "lift coordinates", perr.Operation)
		assert.Contains(t, perr.Output, "cannot open chain")
	})

	t.Run("non-numeric position fails before the wrapper runs", func(t *testing.T) {
		lifter := liftover.NewLifter(filepath.Join(t.TempDir(), "missing.sh"), "chain.gz")
		_, err := lifter.Lift(context.Background(), spanBatch(span("1", "1e5", "A", "G", "x")))

		var ferr *errors.FormatError
		require.ErrorAs(t, err, &ferr)
		assert.Contains(t, ferr.Columns, "pos")
	})

	t.Run("incomplete key fails before the wrapper runs", func(t *testing.T) {
		lifter := liftover.NewLifter(filepath.Join(t.TempDir(), "missing.sh"), "chain.gz")
		batch := spanBatch(tab.Row{
			"chr": tab.String("1"),
			"pos": tab.String("100"),
			"alt": tab.String("G"),
		})

		_, err := lifter.Lift(context.Background(), batch)
		var ferr *errors.FormatError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("malformed lifted file surfaces as a parse error", func(t *testing.T) {
		dir := t.TempDir()
		lifted := filepath.Join(dir, "lifted.tsv")
		require.NoError(t, os.WriteFile(lifted, []byte("chr1\t100\n"), 0o644))

		script := filepath.Join(dir, "lift_over.sh")
		body := "#!/bin/bash\necho \"" + lifted + "\"\n"
		require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

		lifter := liftover.NewLifter(script, "chain.gz", liftover.LifterWithWorkDir(dir))
		_, err := lifter.Lift(context.Background(), spanBatch(span("1", "100", "A", "G", "x")))

		var perr *errors.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "liftover", perr.Format)
		assert.Equal(t, 1, perr.Line)
	})

	t.Run("ordinal outside the batch surfaces as a parse error", func(t *testing.T) {
		dir := t.TempDir()
		lifted := filepath.Join(dir, "lifted.tsv")
		require.NoError(t, os.WriteFile(lifted, []byte("chr1\t99\t100\tA\tG\t7\n"), 0o644))

		script := filepath.Join(dir, "lift_over.sh")
		body := "#!/bin/bash\necho \"" + lifted + "\"\n"
		require.NoError(t, os.WriteFile(script, []byte(body), 0o755))

		lifter := liftover.NewLifter(script, "chain.gz", liftover.LifterWithWorkDir(dir))
		_, err := lifter.Lift(context.Background(), spanBatch(span("1", "100", "A", "G", "x")))

		var perr *errors.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Contains(t, perr.Message, "ordinal")
	})

	t.Run("composes as a preprocess step", func(t *testing.T) {
		lifter := liftover.NewLifter("lift_over.sh", "chain.gz")
		require.NotNil(t, lifter.PreProcess())
	})
}
