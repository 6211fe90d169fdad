package vcf_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alulab/vartab/internal/sources/vcf"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/source"
)

const vcfHeader = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO"

func vcfContent(lines ...string) string {
	all := append([]string{
		"##fileformat=VCFv4.2",
		"##contig=<ID=1,length=248956422>",
	}, lines...)
	return strings.Join(all, "\n") + "\n"
}

func writeGz(t *testing.T, name, content string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestSourceLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("reads gzipped vcf with normalized header", func(t *testing.T) {
		path := writeGz(t, "cohort.vcf.gz", vcfContent(
			vcfHeader,
			"chr1\t880107\trs1\tC\tA\t50\tPASS\tAF=0.01",
			"7\t140453136\t.\tA\tT\t.\t.\t.",
		))

		src := vcf.New("wgs", path)
		batch, err := src.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, batch.Len())
		assert.Equal(t,
			[]string{"chr", "pos", "id", "ref", "alt", "qual", "filter", "info"},
			batch.Columns())

		first := batch.Row(0)
		assert.Equal(t, "chr1", first.Get("chr").String(), "prefix strip happens in preprocess, not load")
		assert.Equal(t, "880107", first.Get("pos").String())
		assert.Equal(t, "AF=0.01", first.Get("info").String())

		second := batch.Row(1)
		assert.Equal(t, ".", second.Get("id").String(), "the VCF missing marker stays literal")
	})

	t.Run("keeps genotype columns when present", func(t *testing.T) {
		path := writeGz(t, "cohort.vcf.gz", vcfContent(
			vcfHeader+"\tFORMAT\tNA12878",
			"1\t100\t.\tA\tG\t.\tPASS\t.\tGT\t0/1",
		))

		src := vcf.New("wgs", path)
		batch, err := src.Load(ctx)
		require.NoError(t, err)
		assert.Contains(t, batch.Columns(), "format")
		assert.Contains(t, batch.Columns(), "na12878")
		assert.Equal(t, "0/1", batch.Row(0).Get("na12878").String())
	})

	t.Run("reads plain files too", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cohort.vcf")
		content := vcfContent(vcfHeader, "1\t100\t.\tA\tG\t.\tPASS\t.")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		src := vcf.New("wgs", path)
		batch, err := src.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, batch.Len())
	})

	t.Run("missing file carries source and path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "absent.vcf.gz")
		src := vcf.New("wgs", path)

		_, err := src.Load(ctx)
		var lerr *errors.LoadError
		require.ErrorAs(t, err, &lerr)
		assert.Equal(t, "wgs", lerr.Source)
		assert.Equal(t, path, lerr.Path)
	})

	t.Run("rejects files without a CHROM header", func(t *testing.T) {
		path := writeGz(t, "cohort.vcf.gz", "CHROM\tPOS\n1\t100\n")

		src := vcf.New("wgs", path)
		_, err := src.Load(ctx)
		var perr *errors.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "vcf", perr.Format)
	})

	t.Run("rejects short data lines", func(t *testing.T) {
		path := writeGz(t, "cohort.vcf.gz", vcfContent(vcfHeader, "1\t100\t.\tA"))

		src := vcf.New("wgs", path)
		_, err := src.Load(ctx)
		var perr *errors.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, 4, perr.Line)
	})
}

func TestSourcePreProcess(t *testing.T) {
	ctx := context.Background()
	path := writeGz(t, "cohort.vcf.gz", vcfContent(
		vcfHeader,
		"chr1\t880107\trs1\tC\tA\t50\tPASS\tAF=0.01",
		"7\t140453136\t.\tA\tT\t.\t.\t.",
	))

	src := vcf.New("wgs", path)
	batch, err := src.Load(ctx)
	require.NoError(t, err)

	out, err := src.PreProcess(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, "1", out.Row(0).Get("chr").String())
	assert.Equal(t, "7", out.Row(1).Get("chr").String())
	assert.Equal(t, "chr1", batch.Row(0).Get("chr").String(), "input batch stays untouched")
}

func TestSourceKind(t *testing.T) {
	src := vcf.New("wgs", "cohort.vcf.gz")
	assert.Equal(t, source.KindValidation, src.Kind())
	assert.Equal(t, []string{"chr", "pos", "ref", "alt"}, src.Keys())

	custom := vcf.New("wgs", "cohort.vcf.gz", vcf.WithKeys("chr", "pos"))
	assert.Equal(t, []string{"chr", "pos"}, custom.Keys())
}
