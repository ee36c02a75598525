package vdom

import (
	"fmt"
	"sort"
	"sync"
)

// Func is a named dependency callable from components, such as "fetch".
type Func func(args ...any) any

// Env is the table of named dependencies visible to components during a
// mount. Tests swap entries for spies and stubs; Restore undoes every
// replacement made since the last Snapshot.
type Env struct {
	mu       sync.RWMutex
	funcs    map[string]Func
	snapshot map[string]Func
}

// NewEnv creates an empty Env.
func NewEnv() *Env {
	return &Env{funcs: make(map[string]Func)}
}

// Set installs fn under name, replacing any previous entry.
func (e *Env) Set(name string, fn Func) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funcs[name] = fn
}

// Func returns the dependency registered under name.
func (e *Env) Func(name string) (Func, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fn, ok := e.funcs[name]
	return fn, ok
}

// Call invokes the named dependency. Calling an unregistered name panics,
// matching what calling an undefined function does in a component.
func (e *Env) Call(name string, args ...any) any {
	fn, ok := e.Func(name)
	if !ok {
		panic(fmt.Sprintf("vdom: env function %q is not defined", name))
	}
	return fn(args...)
}

// Names returns the registered names sorted.
func (e *Env) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.funcs))
	for name := range e.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot records the current entries so Restore can return to them.
func (e *Env) Snapshot() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snapshot = make(map[string]Func, len(e.funcs))
	for k, v := range e.funcs {
		e.snapshot[k] = v
	}
}

// Restore resets entries to the last Snapshot. Without a snapshot it is a no-op.
func (e *Env) Restore() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot == nil {
		return
	}
	e.funcs = make(map[string]Func, len(e.snapshot))
	for k, v := range e.snapshot {
		e.funcs[k] = v
	}
}
