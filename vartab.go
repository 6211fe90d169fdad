// Package vartab consolidates genomic variant sources into a single
// table keyed on chromosome, position, reference, and alternate allele.
//
// Sources merge one at a time. Rows the table already holds are flagged
// in the source's indicator column, unseen rows are annotated and
// appended, and the schema grows to the union of all columns seen so
// far. Validation sources never add rows, they only flag the overlap.
// Enrichment steps derive new columns from the finished table.
//
// Example usage:
//
//	// Create a new client with sources and merge them in order.
//	client, err := vartab.New(
//		vartab.WithSources(clinvar, gnomad, cohort),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Register a hook to observe merge progress.
//	client.OnMerge(func(stats merge.Stats) {
//		log.Printf("%s: %d new, %d existing", stats.Source, stats.New, stats.Existing)
//	})
//
//	// Merge every contributor, then run the validation sources.
//	if _, err := client.MergeAll(ctx); err != nil {
//		log.Fatal(err)
//	}
//	if _, err := client.Validate(ctx); err != nil {
//		log.Fatal(err)
//	}
//
//	// Export the consolidated table.
//	if err := client.Export("variants.csv"); err != nil {
//		log.Fatal(err)
//	}
package vartab

import (
	"sync"

	"github.com/alulab/vartab/pkg/merge"
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tabio"
)

// Compile-time interface check to ensure proper implementation.
var _ Client = (*client)(nil)

// Client builds and manages a consolidated variant table.
type Client interface {

	// Table provides copy-on-read access to the consolidated table
	Table

	// Builder handles source registration, merging, and validation
	Builder

	// Enricher derives columns from the finished table
	Enricher

	// Persistence handles exporting the table to disk
	Persistence

	// Hooks provides access to event callback registration
	Hooks
}

// client is the internal implementation of the Client interface.
type client struct {
	mu     sync.RWMutex
	engine *merge.Engine
	hooks  *hooks
}

// New creates a new Client instance with the given options.
func New(opts ...Option) (Client, error) {
	cfg := defaults()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	registry := cfg.registry
	if registry == nil {
		registry = source.NewRegistry()
	}
	for _, src := range cfg.sources {
		if err := registry.Add(src); err != nil {
			return nil, err
		}
	}

	c := &client{
		engine: merge.New(cfg.schema, registry),
		hooks:  newHooks(),
	}

	// Seed from a prior build before any merges run.
	switch {
	case cfg.tableFile != "":
		t, err := tabio.ReadTable(cfg.tableFile, c.engine.Schema())
		if err != nil {
			return nil, err
		}
		if err := c.engine.SetTable(t); err != nil {
			return nil, err
		}
	case cfg.table != nil:
		if err := c.engine.SetTable(cfg.table.Clone()); err != nil {
			return nil, err
		}
	}

	return c, nil
}
