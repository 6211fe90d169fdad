// Package source defines interfaces and types for variant data sources.
// Sources load batches of variant records from files, databases, or
// in-memory fixtures and normalize them to the canonical key schema before
// a merge.
//
// The package provides a unified interface for the two ways a source can
// participate in a build: contributors add rows to the table, validators
// only flag rows already present.
//
// Example usage:
//
//	// Register sources in merge order
//	reg := source.NewRegistry()
//	if err := reg.Add(clinvar); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Walk contributors in registration order
//	for _, c := range reg.Contributors() {
//	    // merge c
//	}
package source

import (
	"context"
	"slices"

	"github.com/alulab/vartab/pkg/tab"
)

// Kind partitions sources by how they participate in a build.
type Kind string

// String returns the string representation of a source kind.
func (k Kind) String() string {
	return string(k)
}

// Source kinds.
const (
	// KindVariants marks a contributor: its records become table rows or
	// flag existing ones.
	KindVariants Kind = "variants"
	// KindValidation marks a validator: its records only flag rows already
	// in the table.
	KindValidation Kind = "validation"
)

// Kinds returns all defined source kinds.
func Kinds() []Kind {
	return []Kind{
		KindVariants,
		KindValidation,
	}
}

// IsValid returns true if the kind is one of the defined constants.
// Uses Kinds() to ensure consistency with the authoritative kind list.
func (k Kind) IsValid() bool {
	return slices.Contains(Kinds(), k)
}

// Source represents a provider of variant records.
type Source interface {
	// Name identifies the source. It doubles as the name of the source's
	// indicator column in the consolidated table.
	Name() string

	// Kind reports how this source participates in a build.
	Kind() Kind

	// Keys returns the source's native key column names, in the canonical
	// key order. PreProcess is responsible for renaming them.
	Keys() []string

	// Load reads the source into a batch. Ownership of the returned batch
	// transfers to the caller.
	Load(ctx context.Context) (*tab.Batch, error)

	// PreProcess normalizes a freshly loaded batch: after it returns, the
	// batch must expose the canonical key columns.
	PreProcess(ctx context.Context, b *tab.Batch) (*tab.Batch, error)
}

// Contributor is a source whose new records enter the table, transformed by
// its declared annotation steps.
type Contributor interface {
	Source

	// Annotations returns the steps applied to new rows, in order.
	Annotations() []Annotation
}

// AnnotateFunc transforms a batch of new rows. The returned batch always
// replaces the input; it must not hold more rows than it was given. Steps
// may re-key rows and may drop rows they cannot annotate.
type AnnotateFunc func(ctx context.Context, b *tab.Batch) (*tab.Batch, error)

// PreProcessFunc adapts a standalone batch transformation into a source's
// PreProcess step.
type PreProcessFunc func(ctx context.Context, b *tab.Batch) (*tab.Batch, error)

// Annotation is a named annotation step.
type Annotation struct {
	// Name identifies the step in logs and errors.
	Name string

	// Apply runs the step.
	Apply AnnotateFunc
}

// ChainPreProcess composes preprocess steps left to right, stopping at the
// first error. A nil step is skipped.
func ChainPreProcess(steps ...PreProcessFunc) PreProcessFunc {
	return func(ctx context.Context, b *tab.Batch) (*tab.Batch, error) {
		var err error
		for _, step := range steps {
			if step == nil {
				continue
			}
			b, err = step(ctx, b)
			if err != nil {
				return nil, err
			}
		}
		return b, nil
	}
}
