package substitute

import (
	"testing"

	"github.com/vango-dev/vspec/pkg/render"
	"github.com/vango-dev/vspec/pkg/vdom"
)

var (
	child = vdom.Define("F", func(_ vdom.Ctx, _ vdom.Props) *vdom.VNode {
		return vdom.P("real F")
	})
	parent = vdom.Static("P2", func() *vdom.VNode {
		return vdom.Fragment(child.New(vdom.Props{"randomProp": 123, "blah": 12}))
	})
)

// Compile-time check that a Registry can drive the renderer.
var _ render.Resolver = (*Registry)(nil)

func renderWith(t *testing.T, reg *Registry, node *vdom.VNode) string {
	t.Helper()
	html, err := render.NewRenderer(render.RendererConfig{Resolver: reg}).RenderToString(node)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return html
}

func TestRegistryIdentityFallback(t *testing.T) {
	reg := NewRegistry()
	if got := reg.Get(child); got != child {
		t.Errorf("Get() on empty registry = %v, want original", got)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d", reg.Len())
	}
}

func TestRegistryKeysByIdentity(t *testing.T) {
	reg := NewRegistry()
	sameName := vdom.Define("F", func(vdom.Ctx, vdom.Props) *vdom.VNode { return nil })
	mock := vdom.Static("Mock", func() *vdom.VNode { return nil })

	reg.Set(child, mock)
	if reg.Get(sameName) != sameName {
		t.Error("a component with the same name must not be substituted")
	}
	if reg.Get(child) != mock {
		t.Error("expected the mock for the registered component")
	}
}

func TestSetAndClear(t *testing.T) {
	reg := NewRegistry()
	mock := vdom.Static("Mock", func() *vdom.VNode { return vdom.Span("mock") })

	if got := renderWith(t, reg, parent.New(nil)); got != "<p>real F</p>" {
		t.Fatalf("before Set: %q", got)
	}

	reg.Set(child, mock)
	if got := renderWith(t, reg, parent.New(nil)); got != "<span>mock</span>" {
		t.Errorf("after Set: %q", got)
	}

	reg.Clear()
	if got := renderWith(t, reg, parent.New(nil)); got != "<p>real F</p>" {
		t.Errorf("after Clear: %q", got)
	}
}

func TestComponentSpy(t *testing.T) {
	reg := NewRegistry()
	s := NewComponentSpy(child, "")
	s.Install(reg)

	if s.Called() {
		t.Fatal("spy should not be called before rendering")
	}

	got := renderWith(t, reg, parent.New(nil))
	if got != `<div id="spy-F"></div>` {
		t.Errorf("render = %q", got)
	}
	if s.MarkerID() != "spy-F" || s.MarkerQuery() != `div[id="spy-F"]` {
		t.Errorf("marker = %q / %q", s.MarkerID(), s.MarkerQuery())
	}

	calls := s.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	if calls[0]["randomProp"] != 123 || calls[0]["blah"] != 12 {
		t.Errorf("recorded props = %v", calls[0])
	}
	if !s.CalledWith(vdom.Props{"randomProp": 123}) {
		t.Error("CalledWith partial props should match")
	}
	if s.CalledWith(vdom.Props{"randomProp": 124}) {
		t.Error("CalledWith should not match a different value")
	}
}

func TestMarkerIDPrefix(t *testing.T) {
	if got := MarkerID(child, "mock-"); got != "mock-F" {
		t.Errorf("MarkerID() = %q", got)
	}
	if got := NewComponentSpy(child, "stub-").MarkerID(); got != "stub-F" {
		t.Errorf("spy MarkerID() = %q", got)
	}
}
