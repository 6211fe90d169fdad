package vartab

import (
	"github.com/alulab/vartab/pkg/source"
	"github.com/alulab/vartab/pkg/tab"
)

// Option is a function that configures a client instance
type Option func(*config) error

// config collects construction settings for New.
type config struct {
	schema    tab.Schema
	sources   []source.Source
	registry  *source.Registry
	table     *tab.Table
	tableFile string
}

// defaults returns the configuration New starts from.
func defaults() *config {
	return &config{
		schema: tab.Default(),
	}
}

// WithKeys configures the key columns the consolidated table is merged
// on. The columns must be non-empty and unique.
func WithKeys(columns ...string) Option {
	return func(c *config) error {
		schema, err := tab.NewSchema(columns...)
		if err != nil {
			return err
		}
		c.schema = schema
		return nil
	}
}

// WithSchema configures the key schema for the consolidated table
func WithSchema(schema tab.Schema) Option {
	return func(c *config) error {
		c.schema = schema
		return nil
	}
}

// WithSources registers sources at construction time, in the given order
func WithSources(sources ...source.Source) Option {
	return func(c *config) error {
		c.sources = append(c.sources, sources...)
		return nil
	}
}

// WithRegistry configures a pre-populated source registry. Sources given
// via WithSources are added to it.
func WithRegistry(registry *source.Registry) Option {
	return func(c *config) error {
		c.registry = registry
		return nil
	}
}

// WithTable seeds the client with an existing consolidated table. The
// table is copied, and its columns must start with the key schema.
func WithTable(t *tab.Table) Option {
	return func(c *config) error {
		c.table = t
		return nil
	}
}

// WithTableFile seeds the client from a previously exported table file.
// Takes precedence over WithTable when both are given.
func WithTableFile(path string) Option {
	return func(c *config) error {
		c.tableFile = path
		return nil
	}
}
