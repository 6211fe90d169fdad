package source_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

func TestStaticDefaults(t *testing.T) {
	s := source.NewStatic("clinvar", []string{"chr", "pos", "ref", "alt"}, nil)
	assert.Equal(t, "clinvar", s.Name())
	assert.Equal(t, source.KindVariants, s.Kind())
	assert.Equal(t, []string{"chr", "pos", "ref", "alt"}, s.Keys())
	assert.Empty(t, s.Annotations())
}

func TestStaticLoad(t *testing.T) {
	cols := []string{"chr", "pos", "ref", "alt"}
	rows := []tab.Row{
		variantRow("1", "100", "A", "G"),
		variantRow("2", "200", "C", "T"),
	}
	s := source.NewStatic("clinvar", cols, rows)

	t.Run("loads declared rows", func(t *testing.T) {
		b, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, b.Len())
		assert.Equal(t, cols, b.Columns())
	})

	t.Run("each load is independent", func(t *testing.T) {
		first, err := s.Load(context.Background())
		require.NoError(t, err)
		first.Row(0)["chr"] = tab.String("X")
		first.Append(variantRow("3", "300", "G", "C"))

		second, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, second.Len())
		assert.Equal(t, "1", second.Row(0).Get("chr").Str)
	})

	t.Run("configured load error", func(t *testing.T) {
		broken := source.NewStatic("gnomad", cols, rows,
			source.StaticWithLoadError(assert.AnError))
		_, err := broken.Load(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestStaticOptions(t *testing.T) {
	t.Run("kind and keys", func(t *testing.T) {
		s := source.NewStatic("wgs", nil, nil,
			source.StaticWithKind(source.KindValidation),
			source.StaticWithKeys("chromosome", "position", "ref", "alt"))
		assert.Equal(t, source.KindValidation, s.Kind())
		assert.Equal(t, []string{"chromosome", "position", "ref", "alt"}, s.Keys())
	})

	t.Run("preprocess", func(t *testing.T) {
		s := source.NewStatic("clinvar", []string{"chr", "pos", "ref", "alt"},
			[]tab.Row{variantRow("chr1", "100", "a", "g")},
			source.StaticWithPreProcess(func(_ context.Context, b *tab.Batch) (*tab.Batch, error) {
				for _, r := range b.Rows() {
					r["ref"] = tab.String("A")
					r["alt"] = tab.String("G")
				}
				return b, nil
			}))

		b, err := s.Load(context.Background())
		require.NoError(t, err)
		b, err = s.PreProcess(context.Background(), b)
		require.NoError(t, err)
		assert.Equal(t, "A", b.Row(0).Get("ref").Str)
	})

	t.Run("annotations", func(t *testing.T) {
		step := source.Annotation{
			Name: "uppercase",
			Apply: func(_ context.Context, b *tab.Batch) (*tab.Batch, error) {
				return b, nil
			},
		}
		s := source.NewStatic("clinvar", nil, nil,
			source.StaticWithAnnotations(step))
		steps := s.Annotations()
		require.Len(t, steps, 1)
		assert.Equal(t, "uppercase", steps[0].Name)
	})
}
