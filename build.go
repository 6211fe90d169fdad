package vartab

import (
	"context"
	"fmt"

	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/merge"
	"github.com/alulab/vartab/pkg/source"
)

// Compile-time interface check to ensure proper implementation.
var _ Builder = (*client)(nil)

// Builder handles source registration, merging, and validation.
type Builder interface {
	// Register adds a source to the build
	Register(src source.Source) error

	// Sources returns registered source names in registration order
	Sources() []string

	// Merge consolidates one contributor into the table by name
	Merge(ctx context.Context, name string) (*merge.Stats, error)

	// MergeAll merges every contributor in registration order
	MergeAll(ctx context.Context) ([]*merge.Stats, error)

	// Validate runs every validation source against the table
	Validate(ctx context.Context) ([]*merge.Stats, error)
}

// Register adds a source to the build. Names must be unique across the
// registry.
func (c *client) Register(src source.Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Registry().Add(src)
}

// Sources returns the registered source names in registration order.
func (c *client) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.engine.Registry().Names()
}

// Merge consolidates one contributor into the table by name. Merging a
// validation source is an error; use Validate for those.
func (c *client) Merge(ctx context.Context, name string) (*merge.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src, ok := c.engine.Registry().Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: source %s", errors.ErrNotFound, name)
	}
	contributor, ok := src.(source.Contributor)
	if !ok {
		return nil, errors.NewKindError(name, src.Kind().String(), source.KindVariants.String())
	}

	stats, err := c.engine.Merge(ctx, contributor)
	if err != nil {
		return nil, err
	}
	c.hooks.fireMerge(stats)
	return stats, nil
}

// MergeAll merges every registered contributor in registration order,
// stopping at the first failure. Stats for the merges that completed
// are returned alongside the error.
func (c *client) MergeAll(ctx context.Context) ([]*merge.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var all []*merge.Stats
	for _, con := range c.engine.Registry().Contributors() {
		stats, err := c.engine.Merge(ctx, con)
		if err != nil {
			return all, err
		}
		c.hooks.fireMerge(stats)
		all = append(all, stats)
	}
	return all, nil
}

// Validate runs every registered validation source against the table in
// registration order, stopping at the first failure.
func (c *client) Validate(ctx context.Context) ([]*merge.Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Validate(ctx)
}
