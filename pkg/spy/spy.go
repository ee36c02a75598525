package spy

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/vango-dev/vspec/pkg/vdom"
)

// Anything matches any single argument in CalledWith expectations.
const Anything = mock.Anything

// Call is one recorded invocation.
type Call struct {
	Args []any
}

// Func records every call made through it and optionally returns a
// canned result. It is safe for concurrent use, since components call
// dependencies from tracked goroutines.
type Func struct {
	name string

	mu      sync.Mutex
	calls   []Call
	respond func(args ...any) any
}

// New creates a spy that records calls and returns nil.
func New(name string) *Func {
	return &Func{name: name}
}

// Stub creates a spy that returns result from every call.
func Stub(name string, result any) *Func {
	return &Func{name: name, respond: func(...any) any { return result }}
}

// StubFunc creates a spy that delegates to fn after recording the call.
func StubFunc(name string, fn func(args ...any) any) *Func {
	return &Func{name: name, respond: fn}
}

// Name returns the dependency name the spy stands in for.
func (f *Func) Name() string { return f.name }

// Call records args and returns the stubbed result.
func (f *Func) Call(args ...any) any {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Args: append([]any(nil), args...)})
	respond := f.respond
	f.mu.Unlock()

	if respond == nil {
		return nil
	}
	return respond(args...)
}

// Fn adapts the spy for installation into a vdom.Env.
func (f *Func) Fn() vdom.Func {
	return f.Call
}

// Calls returns a copy of the recorded calls in order.
func (f *Func) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns the number of recorded calls.
func (f *Func) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// Called reports whether the spy was called at least once.
func (f *Func) Called() bool {
	return f.CallCount() > 0
}

// CalledWith reports whether any recorded call matches expected. See Match.
func (f *Func) CalledWith(expected ...any) bool {
	for _, c := range f.Calls() {
		if Match(expected, c.Args) {
			return true
		}
	}
	return false
}

// Reset forgets recorded calls.
func (f *Func) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

// Match reports whether actual satisfies expected position by position.
// Props expectations match as subsets: keys missing from the expectation
// are ignored. Other values are compared with testify's argument rules, so
// Anything and mock.AnythingOfType work as placeholders.
func Match(expected, actual []any) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if !matchOne(expected[i], actual[i]) {
			return false
		}
	}
	return true
}

func matchOne(expected, actual any) bool {
	if want, ok := asProps(expected); ok {
		got, ok := asProps(actual)
		if !ok {
			return false
		}
		return PropsSubset(want, got)
	}
	_, diffs := mock.Arguments{expected}.Diff([]any{actual})
	return diffs == 0
}

// PropsSubset reports whether every key of want is present in got with an
// equal value. Nested Props are compared as subsets too.
func PropsSubset(want, got vdom.Props) bool {
	for k, w := range want {
		g, ok := got[k]
		if !ok {
			return false
		}
		if wp, ok := asProps(w); ok {
			gp, ok := asProps(g)
			if !ok || !PropsSubset(wp, gp) {
				return false
			}
			continue
		}
		if !assert.ObjectsAreEqual(w, g) {
			return false
		}
	}
	return true
}

func asProps(v any) (vdom.Props, bool) {
	switch p := v.(type) {
	case vdom.Props:
		return p, true
	case map[string]any:
		return vdom.Props(p), true
	default:
		return nil, false
	}
}

// FormatArgs renders arguments for descriptions and diagnostics:
// strings are quoted and Props print with sorted keys.
func FormatArgs(args []any) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(a)
	}
	return strings.Join(parts, ", ")
}

func formatValue(v any) string {
	if p, ok := asProps(v); ok {
		keys := make([]string, 0, len(p))
		for k := range p {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]string, len(keys))
		for i, k := range keys {
			fields[i] = k + ": " + formatValue(p[k])
		}
		return "{" + strings.Join(fields, ", ") + "}"
	}
	switch x := v.(type) {
	case string:
		return fmt.Sprintf("%q", x)
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%v", x)
	}
}
