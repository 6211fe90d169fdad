package vartab

import (
	"github.com/alulab/vartab/pkg/errors"
	"github.com/alulab/vartab/pkg/tabio"
)

// Compile-time interface check to ensure proper implementation.
var _ Persistence = (*client)(nil)

// Persistence handles exporting the consolidated table to disk.
type Persistence interface {
	// Export writes the table to path, format derived from the extension
	Export(path string) error

	// ExportAs writes the table to path in the given format
	ExportAs(path string, format tabio.Format) error
}

// Export writes the consolidated table to path, deriving the format
// from the file extension.
func (c *client) Export(path string) error {
	format, err := tabio.FormatForPath(path)
	if err != nil {
		return err
	}
	return c.ExportAs(path, format)
}

// ExportAs writes the consolidated table to path in the given format.
// Returns ErrNoTable before the first merge.
func (c *client) ExportAs(path string, format tabio.Format) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t := c.engine.Table()
	if t == nil {
		return errors.ErrNoTable
	}
	return tabio.Write(t, path, format)
}
