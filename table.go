package vartab

import (
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tab"
)

// Compile-time interface check to ensure proper implementation.
var _ Table = (*client)(nil)

// Table provides copy-on-read access to the consolidated table.
type Table interface {
	// Table returns a deep copy of the consolidated table
	Table() (*tab.Table, error)

	// Reset discards the consolidated table, keeping registered sources
	Reset()
}

// Table returns a deep copy of the consolidated table. Mutating the
// copy does not affect the build. Returns ErrNoTable before the first
// merge.
func (c *client) Table() (*tab.Table, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t := c.engine.Table()
	if t == nil {
		return nil, errors.ErrNoTable
	}
	return t.Clone(), nil
}

// Reset discards the consolidated table. Registered sources survive,
// so the next merge starts a fresh build over the same registry.
func (c *client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.Reset()
}
