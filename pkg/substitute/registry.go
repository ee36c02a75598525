package substitute

import (
	"sync"

	"github.com/vango-dev/vspec/pkg/vdom"
)

// Registry maps component references to their replacements. Keys are
// compared by pointer, so two components sharing a Name never collide.
// A Registry implements render.Resolver.
type Registry struct {
	mu      sync.RWMutex
	entries map[*vdom.ComponentType]*vdom.ComponentType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[*vdom.ComponentType]*vdom.ComponentType)}
}

// Set replaces original with replacement for every later instantiation.
func (r *Registry) Set(original, replacement *vdom.ComponentType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[original] = replacement
}

// Get returns the replacement for original, or original itself.
func (r *Registry) Get(original *vdom.ComponentType) *vdom.ComponentType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if replacement, ok := r.entries[original]; ok {
		return replacement
	}
	return original
}

// Resolve implements render.Resolver.
func (r *Registry) Resolve(c *vdom.ComponentType) *vdom.ComponentType {
	return r.Get(c)
}

// Clear removes every substitution.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[*vdom.ComponentType]*vdom.ComponentType)
}

// Len returns the number of substitutions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
