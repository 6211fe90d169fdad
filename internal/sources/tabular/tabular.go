// Package tabular loads delimited variant files as contributing sources.
//
// A tabular source reads a csv/tsv file, plain or gzipped, renames its
// columns onto the canonical key schema, and contributes its variants
// together with any configured annotation steps.
//
// Example usage:
//
//	src := tabular.New("clinvar", "clinvar_result.txt",
//	    tabular.WithRename(map[string]string{
//	        "Chromosome": "chr",
//	        "Position":   "pos",
//	    }),
//	    tabular.WithChrStrip(),
//	    tabular.WithAnnotations(runner.Annotation()))
//	err := registry.Add(src)
package tabular

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
	"github.com/alulab/vartab/pkg/tabio"
)

var _ source.Contributor = (*Source)(nil)

// Source is a delimited-file variant source.
type Source struct {
	name        string
	path        string
	keys        []string
	rename      map[string]string
	stripChr    bool
	carry       []string
	readOpts    []tabio.ReadOption
	preprocess  source.PreProcessFunc
	annotations []source.Annotation
}

// Option configures a Source.
type Option func(*Source)

// WithKeys overrides the native key column names.
func WithKeys(keys ...string) Option {
	return func(s *Source) {
		s.keys = keys
	}
}

// WithRename maps file column names onto canonical ones.
func WithRename(m map[string]string) Option {
	return func(s *Source) {
		s.rename = maps.Clone(m)
	}
}

// WithDelimiter overrides the extension-derived column separator.
func WithDelimiter(d rune) Option {
	return func(s *Source) {
		s.readOpts = append(s.readOpts, tabio.ReadWithDelimiter(d))
	}
}

// WithTrim strips surrounding whitespace from every cell at load time.
func WithTrim() Option {
	return func(s *Source) {
		s.readOpts = append(s.readOpts, tabio.ReadWithTrim())
	}
}

// WithChrStrip removes a chr prefix from chromosome names so they match
// the table's bare naming.
func WithChrStrip() Option {
	return func(s *Source) {
		s.stripChr = true
	}
}

// WithCarry restricts the contributed columns to the keys plus the named
// columns. Without it every file column rides along.
func WithCarry(cols ...string) Option {
	return func(s *Source) {
		s.carry = cols
	}
}

// WithPreProcess appends an extra preprocess step, run after renaming
// and chromosome normalization. Lift-over composes here.
func WithPreProcess(fn source.PreProcessFunc) Option {
	return func(s *Source) {
		s.preprocess = fn
	}
}

// WithAnnotations declares the annotation steps applied to new rows.
func WithAnnotations(steps ...source.Annotation) Option {
	return func(s *Source) {
		s.annotations = steps
	}
}

// New creates a tabular source for the given file. The keys default to
// the canonical schema.
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
	return source.KindVariants
}

// Keys returns the native key column names.
func (s *Source) Keys() []string {
	return slices.Clone(s.keys)
}

// Load reads the delimited file into a batch.
func (s *Source) Load(ctx context.Context) (*tab.Batch, error) {
	batch, err := tabio.Read(s.path, s.readOpts...)
	if err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}
	logging.Ctx(ctx).Debug().
		Str("source", s.name).
		Str("path", s.path).
		Int("rows", batch.Len()).
		Msg("Source file loaded")
	return batch, nil
}

// PreProcess renames columns onto the canonical schema, normalizes
// chromosome names, runs the configured extra step, and finally projects
// the carried columns.
func (s *Source) PreProcess(ctx context.Context, batch *tab.Batch) (*tab.Batch, error) {
	steps := []source.PreProcessFunc{s.renameStep()}
	if s.stripChr {
		steps = append(steps, s.chrStripStep())
	}
	if s.preprocess != nil {
		steps = append(steps, s.preprocess)
	}
	if len(s.carry) > 0 {
		steps = append(steps, s.carryStep())
	}
	return source.ChainPreProcess(steps...)(ctx, batch)
}

// Annotations returns the declared annotation steps.
func (s *Source) Annotations() []source.Annotation {
	steps := make([]source.Annotation, len(s.annotations))
	copy(steps, s.annotations)
	return steps
}

func (s *Source) renamed(c string) string {
	if to, ok := s.rename[c]; ok {
		return to
	}
	return c
}

func (s *Source) renameStep() source.PreProcessFunc {
	return func(_ context.Context, batch *tab.Batch) (*tab.Batch, error) {
		if len(s.rename) == 0 {
			return batch, nil
		}
		cols := make([]string, 0, len(batch.Columns()))
		for _, c := range batch.Columns() {
			cols = append(cols, s.renamed(c))
		}
		out := tab.NewBatch(cols...)
		for _, r := range batch.Rows() {
			nr := make(tab.Row, len(r))
			for c, v := range r {
				nr[s.renamed(c)] = v
			}
			out.Append(nr)
		}
		return out, nil
	}
}

func (s *Source) chrStripStep() source.PreProcessFunc {
	return func(_ context.Context, batch *tab.Batch) (*tab.Batch, error) {
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
}

func (s *Source) carryStep() source.PreProcessFunc {
	return func(_ context.Context, batch *tab.Batch) (*tab.Batch, error) {
		cols := slices.Clone(s.keys)
		for _, c := range s.carry {
			if !slices.Contains(cols, c) {
				cols = append(cols, c)
			}
		}
		return batch.Project(cols...), nil
	}
}
