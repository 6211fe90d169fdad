// Package merge implements the incremental consolidation of variant sources
// into a single keyed table.
//
// The engine owns the table for the duration of each call. Merges are
// strictly sequential: one source at a time, in registration order. A
// source that fails to load or violates the structural contract aborts its
// own merge and leaves the table exactly as it was.
//
// Example usage:
//
//	reg := source.NewRegistry()
//	_ = reg.Add(clinvar)
//	_ = reg.Add(gnomad)
//
//	engine := merge.New(tab.Default(), reg)
//	stats, err := engine.MergeAll(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
package merge

import (
	"context"
	stderrors "errors"
	"fmt"
	"slices"
	"time"

	"github.com/agentstation/utc"

	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

// Engine consolidates variant sources into a single keyed table.
// An Engine is not safe for concurrent use; callers serialize access.
type Engine struct {
	schema   tab.Schema
	registry *source.Registry
	table    *tab.Table
}

// New creates an engine over the given key schema and source registry.
// A zero schema falls back to the canonical chr/pos/ref/alt schema.
func New(schema tab.Schema, registry *source.Registry) *Engine {
	if schema.IsZero() {
		schema = tab.Default()
	}
	if registry == nil {
		registry = source.NewRegistry()
	}
	return &Engine{
		schema:   schema,
		registry: registry,
	}
}

// Schema returns the engine's key schema.
func (e *Engine) Schema() tab.Schema {
	return e.schema
}

// Registry returns the engine's source registry.
func (e *Engine) Registry() *source.Registry {
	return e.registry
}

// Table returns the live consolidated table, or nil before the first
// merge. Callers must not mutate it while a merge or validation runs.
func (e *Engine) Table() *tab.Table {
	return e.table
}

// SetTable seeds the engine with a previously built table, resuming a
// build from an earlier export. The table's key schema must match.
func (e *Engine) SetTable(t *tab.Table) error {
	if t != nil && !slices.Equal(t.Schema().Columns(), e.schema.Columns()) {
		return errors.NewConfigError("table", t.Schema().Columns(),
			"table key schema does not match engine schema")
	}
	e.table = t
	return nil
}

// Reset discards the consolidated table. The next merge starts fresh.
func (e *Engine) Reset() {
	e.table = nil
}

// Merge consolidates one contributor into the table: rows already present
// get the source's indicator set, unseen rows are annotated and appended.
func (e *Engine) Merge(ctx context.Context, c source.Contributor) (*Stats, error) {
	started := time.Now()
	name := c.Name()

	// Step 1: Kind gate. Only variant sources may add rows.
	if c.Kind() != source.KindVariants {
		return nil, errors.NewKindError(name, c.Kind().String(), source.KindVariants.String())
	}

	// Step 2: Load and preprocess. Any failure here aborts with the table
	// untouched.
	batch, err := e.loadBatch(ctx, c)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Source: name,
		Loaded: batch.Len(),
	}

	// Step 3: The first merge initializes the table, pre-registering an
	// all-"0" indicator column for every source registered so far.
	if e.table == nil {
		e.table = tab.New(e.schema)
		for _, known := range e.registry.Names() {
			e.table.EnsureColumn(known, tab.Absent)
		}
	}

	// Step 4: Ensure this source's indicator column exists.
	e.table.EnsureColumn(name, tab.Absent)

	// Step 5: Partition batch rows by key into existing and new. Within
	// the batch the first occurrence of a key wins; later duplicates are
	// dropped.
	var (
		existing []int
		fresh    = tab.NewBatch(batch.Columns()...)
		seen     = make(map[tab.Key]struct{}, batch.Len())
	)
	for _, r := range batch.Rows() {
		k, kerr := e.schema.KeyOf(r)
		if kerr != nil {
			return nil, kerr // unreachable: loadBatch verified keys
		}
		if _, dup := seen[k]; dup {
			stats.Duplicates++
			continue
		}
		seen[k] = struct{}{}
		if i, ok := e.table.Lookup(k); ok {
			existing = append(existing, i)
		} else {
			fresh.Append(r)
		}
	}
	stats.Existing = len(existing)

	// Step 6: Flag existing rows. The indicator is the only column an
	// existing row ever receives from a merge.
	for _, i := range existing {
		if serr := e.table.Set(i, name, tab.Present); serr != nil {
			return nil, serr
		}
	}

	// Step 7: New rows carry the indicator through annotation. Steps run
	// in declared order; a step failure aborts before any append, but the
	// indicator flips from step 6 stand.
	fresh.EnsureColumn(name)
	fresh.SetAll(name, tab.Present)
	loadedFresh := fresh.Len()
	for _, step := range c.Annotations() {
		next, aerr := step.Apply(ctx, fresh)
		if aerr != nil {
			return nil, aerr
		}
		if next == nil {
			return nil, errors.NewFormatError(name,
				fmt.Sprintf("annotation step %s returned no batch", step.Name))
		}
		logging.Ctx(ctx).Debug().
			Str("source", name).
			Str("step", step.Name).
			Int("rows", next.Len()).
			Msg("Annotation step applied")
		fresh = next
	}

	// Step 8: Reconcile schemas. Column union, keys first, table order
	// first, then novel batch columns in batch order. Absent cells stay
	// null.
	e.table.AddColumns(fresh.Columns())

	// Step 9: Append surviving new rows after all existing rows. Steps may
	// have re-keyed rows; keys now colliding with the table or an earlier
	// batch row are dropped. Indicator columns a row does not set are
	// filled with "0".
	indicators := e.indicatorColumns()
	appended := make(map[tab.Key]struct{}, fresh.Len())
	for _, r := range fresh.Rows() {
		k, kerr := e.schema.KeyOf(r)
		if kerr != nil {
			continue // re-keyed to an incomplete key, drops below
		}
		if _, dup := appended[k]; dup {
			continue
		}
		if _, ok := e.table.Lookup(k); ok {
			continue
		}
		r[name] = tab.Present
		for _, ind := range indicators {
			if ind != name && r.Get(ind).IsNull() {
				r[ind] = tab.Absent
			}
		}
		if aerr := e.table.Append(r); aerr != nil {
			return nil, aerr
		}
		appended[k] = struct{}{}
	}
	stats.New = len(appended)
	stats.Dropped = loadedFresh - stats.New

	// Step 10: Release the batch and finalize. Ownership transferred at
	// Load; nothing retains it past this point.
	stats.Rows = e.table.Len()
	stats.Columns = len(e.table.Columns())
	stats.Duration = time.Since(started)
	stats.MergedAt = utc.Now()

	logging.Ctx(ctx).Info().
		Str("source", name).
		Int("loaded", stats.Loaded).
		Int("existing", stats.Existing).
		Int("new", stats.New).
		Int("dropped", stats.Dropped).
		Int("rows", stats.Rows).
		Msg("Source merged")

	return stats, nil
}

// MergeAll merges every registered contributor in registration order,
// stopping at the first failure. Stats for completed merges are returned
// either way.
func (e *Engine) MergeAll(ctx context.Context) ([]*Stats, error) {
	var all []*Stats
	for _, c := range e.registry.Contributors() {
		stats, err := e.Merge(ctx, c)
		if err != nil {
			return all, err
		}
		all = append(all, stats)
	}
	return all, nil
}

// loadBatch loads and preprocesses a source batch and enforces the
// structural contract on the result. The table is never touched here.
func (e *Engine) loadBatch(ctx context.Context, src source.Source) (*tab.Batch, error) {
	name := src.Name()

	batch, err := src.Load(ctx)
	if err != nil {
		var le *errors.LoadError
		if stderrors.As(err, &le) {
			return nil, err
		}
		return nil, errors.NewLoadError(name, "", err)
	}
	if batch == nil {
		return nil, errors.NewLoadError(name, "", errors.New("source returned no batch"))
	}

	batch, err = src.PreProcess(ctx, batch)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, errors.NewFormatError(name, "preprocess returned no batch")
	}

	// The canonical key columns must exist after preprocessing...
	var missing []string
	for _, col := range e.schema.Columns() {
		if !batch.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewFormatError(name, "missing key columns after preprocess", missing...)
	}

	// ...and every row must fill them.
	for i, r := range batch.Rows() {
		if _, kerr := e.schema.KeyOf(r); kerr != nil {
			return nil, errors.NewFormatError(name, fmt.Sprintf("row %d: %v", i, kerr))
		}
	}
	return batch, nil
}

// indicatorColumns returns the registered source names that are table
// columns, in registration order.
func (e *Engine) indicatorColumns() []string {
	names := e.registry.Names()
	out := make([]string, 0, len(names))
	for _, n := range names {
		if e.table.HasColumn(n) {
			out = append(out, n)
		}
	}
	return out
}
