package tab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alulab/vartab/pkg/tab"
)

func newVariantRow(chr, pos, ref, alt string) tab.Row {
	return tab.Row{
		"chr": tab.String(chr),
		"pos": tab.String(pos),
		"ref": tab.String(ref),
		"alt": tab.String(alt),
	}
}

func TestBatch(t *testing.T) {
	t.Run("columns keep declaration order", func(t *testing.T) {
		b := tab.NewBatch("chr", "pos", "ref", "alt")
		b.EnsureColumn("gene")
		b.EnsureColumn("chr") // already declared
		assert.Equal(t, []string{"chr", "pos", "ref", "alt", "gene"}, b.Columns())
		assert.True(t, b.HasColumn("gene"))
		assert.False(t, b.HasColumn("STRAND"))
	})

	t.Run("append and access", func(t *testing.T) {
		b := tab.NewBatch("chr", "pos", "ref", "alt")
		b.Append(newVariantRow("1", "100", "A", "G"))
		b.Append(newVariantRow("2", "200", "C", "T"))

		assert.Equal(t, 2, b.Len())
		assert.Equal(t, "2", b.Row(1).Get("chr").Str)
	})

	t.Run("set all declares the column", func(t *testing.T) {
		b := tab.NewBatch("chr", "pos", "ref", "alt")
		b.Append(newVariantRow("1", "100", "A", "G"))
		b.Append(newVariantRow("2", "200", "C", "T"))

		b.SetAll("clinvar", tab.Present)
		assert.Equal(t, []string{"chr", "pos", "ref", "alt", "clinvar"}, b.Columns())
		for _, r := range b.Rows() {
			assert.Equal(t, tab.Present, r.Get("clinvar"))
		}
	})

	t.Run("project reduces columns", func(t *testing.T) {
		b := tab.NewBatch("chr", "pos", "ref", "alt", "qual")
		row := newVariantRow("1", "100", "A", "G")
		row["qual"] = tab.String("60")
		b.Append(row)

		p := b.Project("chr", "pos", "ref", "alt")
		require.Equal(t, 1, p.Len())
		assert.Equal(t, []string{"chr", "pos", "ref", "alt"}, p.Columns())
		assert.True(t, p.Row(0).Get("qual").IsNull())
		assert.Equal(t, "100", p.Row(0).Get("pos").Str)
	})

	t.Run("clone is deep", func(t *testing.T) {
		b := tab.NewBatch("chr", "pos", "ref", "alt")
		b.Append(newVariantRow("1", "100", "A", "G"))

		c := b.Clone()
		c.Row(0)["chr"] = tab.String("X")
		c.EnsureColumn("extra")

		assert.Equal(t, "1", b.Row(0).Get("chr").Str)
		assert.False(t, b.HasColumn("extra"))
	})
}
