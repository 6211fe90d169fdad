package merge

import (
	"context"
	"time"

	"github.com/agentstation/utc"

	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

// ValidateSource flags the table rows a validation source carries. Rows
// the validator covers get its indicator set to "1"; rows it does not
// cover only have unset indicator cells filled with "0". An indicator
// never transitions from "1" back to "0".
func (e *Engine) ValidateSource(ctx context.Context, v source.Source) (*Stats, error) {
	started := time.Now()
	name := v.Name()

	// Step 1: Kind gate. Contributors do not validate.
	if v.Kind() != source.KindValidation {
		return nil, errors.NewKindError(name, v.Kind().String(), source.KindValidation.String())
	}

	// Step 2: A validation pass needs a table to flag.
	if e.table == nil {
		return nil, errors.ErrNoTable
	}

	// Step 3: Load and preprocess with the usual taxonomy; failures leave
	// the table untouched.
	batch, err := e.loadBatch(ctx, v)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Source: name,
		Loaded: batch.Len(),
	}

	// Step 4: Build the validator's key set.
	keys := make(map[tab.Key]struct{}, batch.Len())
	for _, r := range batch.Rows() {
		k, kerr := e.schema.KeyOf(r)
		if kerr != nil {
			return nil, kerr // unreachable: loadBatch verified keys
		}
		keys[k] = struct{}{}
	}
	stats.Duplicates = batch.Len() - len(keys)

	// Step 5: Ensure the validator's indicator column.
	e.table.EnsureColumn(name, tab.Absent)

	// Step 6: Flag covered rows; fill only unset cells with "0".
	var flagErr error
	e.table.Each(func(i int, r tab.Row) bool {
		k, kerr := e.schema.KeyOf(r)
		if kerr != nil {
			flagErr = kerr
			return false
		}
		if _, ok := keys[k]; ok {
			r[name] = tab.Present
			stats.Existing++
		} else if r.Get(name).IsNull() {
			r[name] = tab.Absent
		}
		return true
	})
	if flagErr != nil {
		return nil, flagErr
	}

	stats.Rows = e.table.Len()
	stats.Columns = len(e.table.Columns())
	stats.Duration = time.Since(started)
	stats.MergedAt = utc.Now()

	logging.Ctx(ctx).Info().
		Str("source", name).
		Int("loaded", stats.Loaded).
		Int("matched", stats.Existing).
		Msg("Validation source applied")

	return stats, nil
}

// Validate runs every registered validation source in registration order,
// stopping at the first failure. Stats for completed passes are returned
// either way.
func (e *Engine) Validate(ctx context.Context) ([]*Stats, error) {
	var all []*Stats
	for _, v := range e.registry.Validators() {
		stats, err := e.ValidateSource(ctx, v)
		if err != nil {
			return all, err
		}
		all = append(all, stats)
	}
	return all, nil
}
