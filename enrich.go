package vartab

import (
	"context"

	"github.com/alulab/vartab/pkg/enrich"
	"github.com/alulab/vartab/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ Enricher = (*client)(nil)

// Enricher derives columns from the finished table.
type Enricher interface {
	// Enrich runs the given steps in order against the table
	Enrich(ctx context.Context, steps ...enrich.Enricher) error
}

// Enrich runs the given steps in order against the consolidated table.
// The first failing step aborts the run; columns written by earlier
// steps remain. Returns ErrNoTable before the first merge.
func (c *client) Enrich(ctx context.Context, steps ...enrich.Enricher) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.engine.Table()
	if t == nil {
		return errors.ErrNoTable
	}
	return enrich.NewPipeline(steps...).Run(ctx, t)
}
