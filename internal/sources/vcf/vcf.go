// Package vcf loads VCF files as validation sources.
//
// Meta lines (##) are skipped, the #CHROM header column becomes chr and
// the remaining header names are lowercased. Chromosome names lose their
// chr prefix during preprocess so they match the table's bare naming.
//
// Example usage:
//
//	src := vcf.New("wgs", "cohort.vcf.gz")
//	err := registry.Add(src)
package vcf

import (
	"bufio"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

var _ source.Source = (*Source)(nil)

// siteColumns is the number of fixed VCF site columns, CHROM through INFO.
const siteColumns = 8

// scanBufferSize bounds a single VCF line. INFO fields on annotated
// cohort files run long.
const scanBufferSize = 1 << 20

// Source is a VCF-backed validation source.
type Source struct {
	name string
	path string
	keys []string
}

// Option configures a Source.
type Option func(*Source)

// WithKeys overrides the native key column names.
func WithKeys(keys ...string) Option {
	return func(s *Source) {
		s.keys = keys
	}
}

// New creates a VCF source for the given file. The keys default to the
// canonical schema.
func New(name, path string, opts ...Option) *Source {
	s := &Source{
		name: name,
		path: path,
		keys: tab.Default().Columns(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source name.
func (s *Source) Name() string {
	return s.name
}

// Kind returns the source kind.
func (s *Source) Kind() source.Kind {
	return source.KindValidation
}

// Keys returns the native key column names.
func (s *Source) Keys() []string {
	return slices.Clone(s.keys)
}

// Load reads the VCF into a batch, decompressing .gz files
// transparently.
func (s *Source) Load(ctx context.Context) (*tab.Batch, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(s.path, ".gz") {
		zr, zerr := gzip.NewReader(f)
		if zerr != nil {
			return nil, errors.WrapLoad(s.name, s.path, zerr)
		}
		defer zr.Close()
		r = zr
	}

	batch, err := parse(r, s.path)
	if err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}
	logging.Ctx(ctx).Debug().
		Str("source", s.name).
		Str("path", s.path).
		Int("rows", batch.Len()).
		Msg("VCF loaded")
	return batch, nil
}

// PreProcess strips the chr prefix from chromosome names.
func (s *Source) PreProcess(_ context.Context, batch *tab.Batch) (*tab.Batch, error) {
	out := batch.Clone()
	for _, r := range out.Rows() {
		v := r.Get(constants.ColumnChrom)
		if v.IsNull() {
			continue
		}
		name := strings.TrimSpace(v.Str)
		r[constants.ColumnChrom] = tab.String(strings.TrimPrefix(name, "chr"))
	}
	return out, nil
}

func parse(r io.Reader, path string) (*tab.Batch, error) {
	var batch *tab.Batch
	var cols []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), scanBufferSize)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(text, "##") {
			continue
		}
		if batch == nil {
			names := strings.Split(text, "\t")
			if names[0] != "#CHROM" {
				return nil, &errors.ParseError{
					Format:  "vcf",
					File:    path,
					Line:    line,
					Message: "first header column must be #CHROM",
				}
			}
			cols = make([]string, len(names))
			cols[0] = constants.ColumnChrom
			for i := 1; i < len(names); i++ {
				cols[i] = strings.ToLower(names[i])
			}
			batch = tab.NewBatch(cols...)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fields := strings.Split(text, "\t")
		if len(fields) < siteColumns {
			return nil, &errors.ParseError{
				Format:  "vcf",
				File:    path,
				Line:    line,
				Message: fmt.Sprintf("expected at least %d columns, got %d", siteColumns, len(fields)),
			}
		}

		row := make(tab.Row, len(cols))
		for i, cell := range fields {
			if i >= len(cols) {
				break
			}
			if cell == "" {
				continue
			}
			row[cols[i]] = tab.String(cell)
		}
		batch.Append(row)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.WrapParse("vcf", path, err)
	}
	if batch == nil {
		return nil, &errors.ParseError{
			Format:  "vcf",
			File:    path,
			Message: "file has no header row",
		}
	}
	return batch, nil
}
