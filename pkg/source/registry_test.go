package source_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

func variantRow(chr, pos, ref, alt string) tab.Row {
	return tab.Row{
		"chr": tab.String(chr),
		"pos": tab.String(pos),
		"ref": tab.String(ref),
		"alt": tab.String(alt),
	}
}

func TestKind(t *testing.T) {
	assert.True(t, source.KindVariants.IsValid())
	assert.True(t, source.KindValidation.IsValid())
	assert.False(t, source.Kind("annotations").IsValid())
	assert.Equal(t, "variants", source.KindVariants.String())
}

func TestRegistryAdd(t *testing.T) {
	t.Run("registers sources in order", func(t *testing.T) {
		reg := source.NewRegistry()
		require.NoError(t, reg.Add(source.NewStatic("clinvar", nil, nil)))
		require.NoError(t, reg.Add(source.NewStatic("gnomad", nil, nil)))
		require.NoError(t, reg.Add(source.NewStatic("varicarta", nil, nil)))

		assert.Equal(t, 3, reg.Len())
		assert.Equal(t, []string{"clinvar", "gnomad", "varicarta"}, reg.Names())
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		reg := source.NewRegistry()
		require.NoError(t, reg.Add(source.NewStatic("clinvar", nil, nil)))

		err := reg.Add(source.NewStatic("clinvar", nil, nil))
		require.Error(t, err)
		assert.True(t, errors.IsAlreadyExists(err))

		var dup *errors.DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "clinvar", dup.Name)
		assert.Equal(t, 1, reg.Len())
	})
}

func TestRegistryGet(t *testing.T) {
	reg := source.NewRegistry()
	require.NoError(t, reg.Add(source.NewStatic("clinvar", nil, nil)))

	src, found := reg.Get("clinvar")
	assert.True(t, found)
	assert.Equal(t, "clinvar", src.Name())

	_, found = reg.Get("missing")
	assert.False(t, found)
}

func TestRegistryPartitions(t *testing.T) {
	reg := source.NewRegistry()
	require.NoError(t, reg.Add(source.NewStatic("clinvar", nil, nil)))
	require.NoError(t, reg.Add(source.NewStatic("wgs", nil, nil,
		source.StaticWithKind(source.KindValidation))))
	require.NoError(t, reg.Add(source.NewStatic("gnomad", nil, nil)))

	contributors := reg.Contributors()
	require.Len(t, contributors, 2)
	assert.Equal(t, "clinvar", contributors[0].Name())
	assert.Equal(t, "gnomad", contributors[1].Name())

	validators := reg.Validators()
	require.Len(t, validators, 1)
	assert.Equal(t, "wgs", validators[0].Name())
}

func TestChainPreProcess(t *testing.T) {
	rename := func(_ context.Context, b *tab.Batch) (*tab.Batch, error) {
		out := tab.NewBatch("chr", "pos", "ref", "alt")
		for _, r := range b.Rows() {
			out.Append(tab.Row{
				"chr": r.Get("chromosome"),
				"pos": r.Get("position"),
				"ref": r.Get("ref"),
				"alt": r.Get("alt"),
			})
		}
		return out, nil
	}
	strip := func(_ context.Context, b *tab.Batch) (*tab.Batch, error) {
		for _, r := range b.Rows() {
			c := r.Get("chr")
			if c.Valid && len(c.Str) > 3 && c.Str[:3] == "chr" {
				r["chr"] = tab.String(c.Str[3:])
			}
		}
		return b, nil
	}

	chained := source.ChainPreProcess(rename, nil, strip)

	in := tab.NewBatch("chromosome", "position", "ref", "alt")
	in.Append(tab.Row{
		"chromosome": tab.String("chr7"),
		"position":   tab.String("100"),
		"ref":        tab.String("A"),
		"alt":        tab.String("G"),
	})

	out, err := chained(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "7", out.Row(0).Get("chr").Str)
	assert.Equal(t, "100", out.Row(0).Get("pos").Str)
}
