// Package enrich derives new columns from an already consolidated variant
// table: reference genome bases, editing-site flags, and per-row source
// counts.
//
// Enrichers run as an ordered pipeline after merging. Each enricher either
// commits its column for every row or fails without touching the table.
package enrich

import (
	"context"
	"time"

	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/logging"
	"github.com/alulab/vartab/pkg/tab"
)

// Enricher derives one column over the consolidated table.
type Enricher interface {
	// Name returns the enricher name.
	Name() string

	// Column returns the column the enricher writes.
	Column() string

	// Enrich computes the column for every table row. On error the table
	// is left without the column.
	Enrich(ctx context.Context, t *tab.Table) error
}

// Pipeline runs enrichers in order.
type Pipeline struct {
	enrichers []Enricher
}

// NewPipeline creates a pipeline over the given enrichers. They run in
// the order given.
func NewPipeline(enrichers ...Enricher) *Pipeline {
	return &Pipeline{enrichers: enrichers}
}

// Run applies every enricher to the table, stopping at the first failure.
// Columns committed by earlier enrichers stay in place.
func (p *Pipeline) Run(ctx context.Context, t *tab.Table) error {
	if t == nil {
		return errors.ErrNoTable
	}
	for _, e := range p.enrichers {
		started := time.Now()
		if err := e.Enrich(ctx, t); err != nil {
			return err
		}
		logging.Ctx(ctx).Info().
			Str("enricher", e.Name()).
			Str("column", e.Column()).
			Dur("duration", time.Since(started)).
			Msg("Enricher applied")
	}
	return nil
}
