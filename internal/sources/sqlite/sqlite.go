// Package sqlite loads query-defined variant batches from SQLite files.
//
// The query decides the batch's columns; aliases map them onto the
// canonical schema. Every scanned value arrives as a nullable string, so
// numeric columns serialize naturally into table cells.
//
// Example usage:
//
//	src := sqlite.New("varicarta", "varicarta.db",
//	    "SELECT chromosome AS chr, position AS pos, ref, alt FROM variants")
//	err := registry.Add(src)
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"slices"

	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/alulab/vartab/pkg/constants"
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

var _ source.Contributor = (*Source)(nil)

// Source is a SQLite-backed variant source.
type Source struct {
	name        string
	path        string
	query       string
	kind        source.Kind
	keys        []string
	preprocess  source.PreProcessFunc
	annotations []source.Annotation
}

// Option configures a Source.
type Option func(*Source)

// WithKind sets the source kind, for queries that back a validation
// pass instead of contributing variants.
func WithKind(k source.Kind) Option {
	return func(s *Source) {
		s.kind = k
	}
}

// WithKeys overrides the native key column names.
func WithKeys(keys ...string) Option {
	return func(s *Source) {
		s.keys = keys
	}
}

// WithPreProcess sets the preprocess step.
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

// New creates a SQLite source for the given database file and query.
// The kind defaults to variants and the keys to the canonical schema.
func New(name, path, query string, opts ...Option) *Source {
	s := &Source{
		name:  name,
		path:  path,
		query: query,
		kind:  source.KindVariants,
		keys:  tab.Default().Columns(),
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
	return s.kind
}

// Keys returns the native key column names.
func (s *Source) Keys() []string {
	return slices.Clone(s.keys)
}

// Load runs the query and scans every row into a batch.
func (s *Source) Load(ctx context.Context) (*tab.Batch, error) {
	// sql.Open would silently create an empty database at a missing path.
	if _, err := os.Stat(s.path); err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}

	db, err := sql.Open("sqlite3", s.path)
	if err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(ctx, constants.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}

	rows, err := db.QueryContext(ctx, s.query)
	if err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}

	batch := tab.NewBatch(cols...)
	vals := make([]sql.NullString, len(cols))
	scan := make([]any, len(cols))
	for i := range vals {
		scan[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, errors.WrapLoad(s.name, s.path, err)
		}
		row := make(tab.Row, len(cols))
		for i, c := range cols {
			if vals[i].Valid {
				row[c] = tab.String(vals[i].String)
			}
		}
		batch.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapLoad(s.name, s.path, err)
	}

	logging.Ctx(ctx).Debug().
		Str("source", s.name).
		Str("path", s.path).
		Int("rows", batch.Len()).
		Msg("Query loaded")
	return batch, nil
}

// PreProcess runs the configured preprocess step, if any.
func (s *Source) PreProcess(ctx context.Context, b *tab.Batch) (*tab.Batch, error) {
	if s.preprocess == nil {
		return b, nil
	}
	return s.preprocess(ctx, b)
}

// Annotations returns the declared annotation steps.
func (s *Source) Annotations() []source.Annotation {
	steps := make([]source.Annotation, len(s.annotations))
	copy(steps, s.annotations)
	return steps
}
