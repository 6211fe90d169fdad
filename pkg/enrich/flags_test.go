package enrich_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alulab/vartab/pkg/enrich"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tab"
)

// flagTable builds a table with STRAND annotations covering both strands.
func flagTable(t *testing.T, rows []tab.Row) *tab.Table {
	t.Helper()
	tbl := tab.New(tab.Default())
	tbl.AddColumns([]string{"STRAND"})
	for _, r := range rows {
		require.NoError(t, tbl.Append(r))
	}
	return tbl
}

func strandRow(chr, pos, ref, alt, strand string) tab.Row {
	r := tab.Row{
		"chr": tab.String(chr),
		"pos": tab.String(pos),
		"ref": tab.String(ref),
		"alt": tab.String(alt),
	}
	if strand != "" {
		r["STRAND"] = tab.String(strand)
	}
	return r
}

func TestADARFlag(t *testing.T) {
	tbl := flagTable(t, []tab.Row{
		strandRow("1", "100", "G", "A", "1"),  // plus strand hit
		strandRow("1", "200", "C", "T", "-1"), // minus strand hit
		strandRow("1", "300", "G", "A", "-1"), // wrong strand
		strandRow("1", "400", "A", "G", "1"),  // wrong change
		strandRow("1", "500", "G", "A", ""),   // no strand annotation
	})

	require.NoError(t, enrich.ADARFlag{}.Enrich(context.Background(), tbl))

	want := []string{"1", "1", "0", "0", "0"}
	for i, w := range want {
		assert.Equal(t, w, tbl.Value(i, "is_ADAR_fixable").Str, "row %d", i)
	}
}

func TestAPOBECFlag(t *testing.T) {
	tbl := flagTable(t, []tab.Row{
		strandRow("1", "100", "T", "C", "1"),  // plus strand hit
		strandRow("1", "200", "A", "G", "-1"), // minus strand hit
		strandRow("1", "300", "T", "C", "-1"), // wrong strand
		strandRow("1", "400", "G", "A", "1"),  // wrong change
	})

	require.NoError(t, enrich.APOBECFlag{}.Enrich(context.Background(), tbl))

	want := []string{"1", "1", "0", "0"}
	for i, w := range want {
		assert.Equal(t, w, tbl.Value(i, "is_APOBEC_fixable").Str, "row %d", i)
	}
}

func TestFlagsRequireStrand(t *testing.T) {
	tbl := tab.New(tab.Default())
	require.NoError(t, tbl.Append(strandRow("1", "100", "G", "A", "")))

	err := enrich.ADARFlag{}.Enrich(context.Background(), tbl)
	require.Error(t, err)
	var formatErr *errors.FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Equal(t, []string{"STRAND"}, formatErr.Columns)
	assert.False(t, tbl.HasColumn("is_ADAR_fixable"))
}

func TestSourceCount(t *testing.T) {
	t.Run("counts carriers per row", func(t *testing.T) {
		tbl := tab.New(tab.Default())
		tbl.AddColumns([]string{"clinvar", "gnomad", "varicarta"})
		rows := []struct {
			key   tab.Row
			flags []string
		}{
			{strandRow("1", "100", "A", "G", ""), []string{"1", "1", "1"}},
			{strandRow("2", "200", "C", "T", ""), []string{"1", "0", "0"}},
			{strandRow("3", "300", "G", "A", ""), []string{"0", "0", "0"}},
		}
		for _, row := range rows {
			r := row.key
			r["clinvar"] = tab.String(row.flags[0])
			r["gnomad"] = tab.String(row.flags[1])
			r["varicarta"] = tab.String(row.flags[2])
			require.NoError(t, tbl.Append(r))
		}

		counter := enrich.NewSourceCount("clinvar", "gnomad", "varicarta")
		require.NoError(t, counter.Enrich(context.Background(), tbl))

		assert.Equal(t, "3", tbl.Value(0, "dbs_count").Str)
		assert.Equal(t, "1", tbl.Value(1, "dbs_count").Str)
		assert.Equal(t, "0", tbl.Value(2, "dbs_count").Str)
	})

	t.Run("requires columns", func(t *testing.T) {
		tbl := tab.New(tab.Default())
		err := enrich.NewSourceCount().Enrich(context.Background(), tbl)
		require.Error(t, err)
		assert.True(t, errors.IsInvalidInput(err))
	})

	t.Run("rejects unknown indicator columns", func(t *testing.T) {
		tbl := tab.New(tab.Default())
		tbl.AddColumns([]string{"clinvar"})
		err := enrich.NewSourceCount("clinvar", "gnomad").Enrich(context.Background(), tbl)
		require.Error(t, err)
		var formatErr *errors.FormatError
		require.ErrorAs(t, err, &formatErr)
		assert.Equal(t, []string{"gnomad"}, formatErr.Columns)
	})
}

func TestPipeline(t *testing.T) {
	t.Run("runs enrichers in order", func(t *testing.T) {
		tbl := flagTable(t, []tab.Row{
			strandRow("1", "100", "G", "A", "1"),
		})
		tbl.AddColumns([]string{"clinvar"})
		tbl.Each(func(_ int, r tab.Row) bool {
			r["clinvar"] = tab.Present
			return true
		})

		p := enrich.NewPipeline(
			enrich.ADARFlag{},
			enrich.APOBECFlag{},
			enrich.NewSourceCount("clinvar"),
		)
		require.NoError(t, p.Run(context.Background(), tbl))
		assert.Equal(t, "1", tbl.Value(0, "is_ADAR_fixable").Str)
		assert.Equal(t, "0", tbl.Value(0, "is_APOBEC_fixable").Str)
		assert.Equal(t, "1", tbl.Value(0, "dbs_count").Str)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		tbl := tab.New(tab.Default()) // no STRAND column
		require.NoError(t, tbl.Append(strandRow("1", "100", "G", "A", "")))

		p := enrich.NewPipeline(enrich.ADARFlag{}, enrich.NewSourceCount("clinvar"))
		err := p.Run(context.Background(), tbl)
		require.Error(t, err)
		assert.False(t, tbl.HasColumn("dbs_count"))
	})

	t.Run("requires a table", func(t *testing.T) {
		err := enrich.NewPipeline().Run(context.Background(), nil)
		assert.ErrorIs(t, err, errors.ErrNoTable)
	})
}
