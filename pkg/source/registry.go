package source

import (
	"sync"

	"github.com/alulab/vartab/pkg/errors"
)

// Registry is a thread-safe, registration-ordered collection of sources.
// Order is significant: contributors merge in the order they were added,
// and their indicator columns appear in the table in that order.
type Registry struct {
	mu    sync.RWMutex
	order []Source
	named map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		named: make(map[string]Source),
	}
}

// Add registers a source. Registering the same name twice returns a
// *errors.DuplicateError.
func (r *Registry) Add(src Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := src.Name()
	if _, exists := r.named[name]; exists {
		return errors.NewDuplicateError(name)
	}
	r.named[name] = src
	r.order = append(r.order, src)
	return nil
}

// Get returns a source by name.
func (r *Registry) Get(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, found := r.named[name]
	return src, found
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// List returns all sources in registration order.
func (r *Registry) List() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, len(r.order))
	copy(out, r.order)
	return out
}

// Names returns all source names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.order))
	for _, src := range r.order {
		names = append(names, src.Name())
	}
	return names
}

// Contributors returns the variant sources in registration order.
func (r *Registry) Contributors() []Contributor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Contributor, 0, len(r.order))
	for _, src := range r.order {
		if src.Kind() != KindVariants {
			continue
		}
		if c, ok := src.(Contributor); ok {
			out = append(out, c)
		}
	}
	return out
}

// Validators returns the validation sources in registration order.
func (r *Registry) Validators() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, 0, len(r.order))
	for _, src := range r.order {
		if src.Kind() == KindValidation {
			out = append(out, src)
		}
	}
	return out
}
