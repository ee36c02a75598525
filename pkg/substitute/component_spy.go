package substitute

import (
	"github.com/vango-dev/vspec/pkg/spy"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// DefaultMarkerPrefix prefixes the id of the marker element a component
// spy renders.
const DefaultMarkerPrefix = "spy-"

// MarkerID returns the id of the marker element rendered in place of comp.
func MarkerID(comp *vdom.ComponentType, prefix string) string {
	if prefix == "" {
		prefix = DefaultMarkerPrefix
	}
	return prefix + comp.Name
}

// ComponentSpy stands in for a child component. It renders an empty
// marker element and records the props of every instantiation.
type ComponentSpy struct {
	Original *vdom.ComponentType
	Mock     *vdom.ComponentType

	markerID string
	calls    *spy.Func
}

// NewComponentSpy builds a spy for original. prefix defaults to
// DefaultMarkerPrefix.
func NewComponentSpy(original *vdom.ComponentType, prefix string) *ComponentSpy {
	s := &ComponentSpy{
		Original: original,
		markerID: MarkerID(original, prefix),
		calls:    spy.New(original.Name),
	}
	s.Mock = vdom.Define(original.Name, func(_ vdom.Ctx, props vdom.Props) *vdom.VNode {
		s.calls.Call(props.Clone())
		return vdom.Div(vdom.ID(s.markerID))
	})
	return s
}

// Install registers the spy's mock for its original in reg.
func (s *ComponentSpy) Install(reg *Registry) {
	reg.Set(s.Original, s.Mock)
}

// MarkerID returns the id of the rendered marker element.
func (s *ComponentSpy) MarkerID() string { return s.markerID }

// MarkerQuery returns a CSS query matching the marker element.
func (s *ComponentSpy) MarkerQuery() string {
	return `div[id="` + s.markerID + `"]`
}

// Calls returns the props of every render, in order.
func (s *ComponentSpy) Calls() []vdom.Props {
	calls := s.calls.Calls()
	out := make([]vdom.Props, len(calls))
	for i, c := range calls {
		out[i] = c.Args[0].(vdom.Props)
	}
	return out
}

// Called reports whether the mock was rendered at least once.
func (s *ComponentSpy) Called() bool { return s.calls.Called() }

// CalledWith reports whether any render received props containing partial.
func (s *ComponentSpy) CalledWith(partial vdom.Props) bool {
	return s.calls.CalledWith(partial)
}
