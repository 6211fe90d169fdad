package vartab

import (
	"sync"

	"github.com/alulab/vartab/pkg/merge"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// MergeHook is called after a source merges successfully, with the
// stats of that merge.
type MergeHook func(stats merge.Stats)

// Hooks provides access to event callback registration.
type Hooks interface {
	// OnMerge registers a callback fired after each successful merge
	OnMerge(fn MergeHook)
}

// hooks manages event callbacks for table changes
type hooks struct {
	mu      sync.RWMutex
	onMerge []MergeHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnMerge registers a callback fired after each successful merge.
func (c *client) OnMerge(fn MergeHook) {
	c.hooks.add(fn)
}

func (h *hooks) add(fn MergeHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onMerge = append(h.onMerge, fn)
}

// fireMerge invokes registered callbacks with a copy of the stats.
func (h *hooks) fireMerge(stats *merge.Stats) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onMerge {
		fn(*stats)
	}
}
