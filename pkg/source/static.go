package source

import (
	"context"

	"github.com/alulab/vartab/pkg/tab"
)

var _ Contributor = (*Static)(nil)

// Static is an in-memory source. It serves fixtures in tests and seeds a
// build from rows already in hand.
type Static struct {
	name        string
	kind        Kind
	keys        []string
	cols        []string
	rows        []tab.Row
	annotations []Annotation
	preprocess  PreProcessFunc
	loadErr     error
}

// StaticOption configures a Static source.
type StaticOption func(*Static)

// StaticWithKind sets the source kind.
func StaticWithKind(k Kind) StaticOption {
	return func(s *Static) {
		s.kind = k
	}
}

// StaticWithKeys overrides the native key column names.
func StaticWithKeys(keys ...string) StaticOption {
	return func(s *Static) {
		s.keys = keys
	}
}

// StaticWithAnnotations declares the annotation steps applied to new rows.
func StaticWithAnnotations(steps ...Annotation) StaticOption {
	return func(s *Static) {
		s.annotations = steps
	}
}

// StaticWithPreProcess sets the preprocess step.
func StaticWithPreProcess(fn PreProcessFunc) StaticOption {
	return func(s *Static) {
		s.preprocess = fn
	}
}

// StaticWithLoadError makes Load fail with err.
func StaticWithLoadError(err error) StaticOption {
	return func(s *Static) {
		s.loadErr = err
	}
}

// NewStatic creates an in-memory source over the given columns and rows.
// The kind defaults to variants and the keys to the canonical schema.
func NewStatic(name string, cols []string, rows []tab.Row, opts ...StaticOption) *Static {
	s := &Static{
		name: name,
		kind: KindVariants,
		keys: tab.Default().Columns(),
		cols: cols,
		rows: rows,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the source name.
func (s *Static) Name() string {
	return s.name
}

// Kind returns the source kind.
func (s *Static) Kind() Kind {
	return s.kind
}

// Keys returns the native key column names.
func (s *Static) Keys() []string {
	keys := make([]string, len(s.keys))
	copy(keys, s.keys)
	return keys
}

// Load builds a fresh batch from the stored rows. Each call returns an
// independent copy, so repeated merges of the same Static are safe.
func (s *Static) Load(_ context.Context) (*tab.Batch, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	b := tab.NewBatch(s.cols...)
	for _, r := range s.rows {
		b.Append(r.Clone())
	}
	return b, nil
}

// PreProcess runs the configured preprocess step, if any.
func (s *Static) PreProcess(ctx context.Context, b *tab.Batch) (*tab.Batch, error) {
	if s.preprocess == nil {
		return b, nil
	}
	return s.preprocess(ctx, b)
}

// Annotations returns the declared annotation steps.
func (s *Static) Annotations() []Annotation {
	steps := make([]Annotation, len(s.annotations))
	copy(steps, s.annotations)
	return steps
}
