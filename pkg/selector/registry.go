package selector

import (
	"sort"
	"strings"
	"sync"

	"github.com/vango-dev/vspec/internal/errors"
)

// Spec declares how to build a query and a description for one selector
// name. Template and Describe must be pure functions of param.
type Spec struct {
	// Name identifies the selector within a registry.
	Name string

	// Template builds the CSS query for param.
	Template func(param string) string

	// Describe builds the human-readable phrase used in failure messages
	// and generated test names.
	Describe func(param string) string
}

// Resolved is the outcome of resolving a selector.
type Resolved struct {
	Query       string
	Description string
}

// Registry maps selector names to their Specs.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]Spec
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]Spec)}
}

// Register adds s. Names are unique; registering an existing name fails
// with E009 and leaves the original in place.
func (r *Registry) Register(s Spec) error {
	if s.Name == "" || s.Template == nil {
		return errors.New(errors.CodeMisconfiguredSelector).
			WithDetailf("selector %q needs a name and a template", s.Name)
	}
	if s.Describe == nil {
		name := s.Name
		s.Describe = func(string) string { return name }
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.specs[s.Name]; ok {
		return errors.New(errors.CodeDuplicateSelector).
			WithDetailf("selector %q is already registered", s.Name)
	}
	r.specs[s.Name] = s
	return nil
}

// MustRegister is Register for package init; it panics on error.
func (r *Registry) MustRegister(specs ...Spec) {
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
}

// Resolve returns the query and description for name applied to param.
// An unregistered name is a programmer error and yields E001.
func (r *Registry) Resolve(name, param string) (Resolved, error) {
	r.mu.RLock()
	s, ok := r.specs[name]
	r.mu.RUnlock()
	if !ok {
		return Resolved{}, errors.New(errors.CodeMisconfiguredSelector).
			WithDetailf("no selector named %q is registered", name).
			WithSuggestion("registered selectors: " + strings.Join(r.Names(), ", "))
	}
	return Resolved{Query: s.Template(param), Description: s.Describe(param)}, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.specs[name]
	return ok
}

// Names returns the registered names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for name := range r.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent registry with the same specs, so a suite
// can add selectors without touching Default.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := NewRegistry()
	for name, s := range r.specs {
		out.specs[name] = s
	}
	return out
}
