package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/vdom"
)

func TestRenderText(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	html, err := renderer.RenderToString(vdom.Text("<script>alert('xss')</script>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("HTML should be escaped, got %q", html)
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Errorf("should contain escaped script tag, got %q", html)
	}
}

func TestRenderElements(t *testing.T) {
	tests := []struct {
		name string
		node *vdom.VNode
		want string
	}{
		{
			name: "nested",
			node: vdom.Div(vdom.Class("container"), vdom.H1(vdom.Text("Title")), vdom.P(vdom.Text("Content"))),
			want: `<div class="container"><h1>Title</h1><p>Content</p></div>`,
		},
		{
			name: "void input",
			node: vdom.Input(vdom.Type("text"), vdom.Name("email")),
			want: `<input name="email" type="text">`,
		},
		{
			name: "void img",
			node: vdom.Img(vdom.Src("/image.png"), vdom.Alt("test")),
			want: `<img alt="test" src="/image.png">`,
		},
		{
			name: "boolean attributes",
			node: vdom.Button(vdom.Type("submit"), vdom.Disabled()),
			want: `<button disabled type="submit"></button>`,
		},
		{
			name: "false boolean omitted",
			node: vdom.Button(vdom.DisabledIf(false)),
			want: `<button></button>`,
		},
		{
			name: "nested fragments",
			node: vdom.Fragment(vdom.Fragment(vdom.Span("A"), vdom.Span("B")), vdom.Span("C")),
			want: `<span>A</span><span>B</span><span>C</span>`,
		},
		{
			name: "raw",
			node: vdom.Raw("<strong>Bold</strong>"),
			want: `<strong>Bold</strong>`,
		},
		{
			name: "data attributes",
			node: vdom.Div(vdom.Data("id", "123")),
			want: `<div data-id="123"></div>`,
		},
		{
			name: "attribute escaping",
			node: vdom.Input(vdom.Value(`test" onclick="x`)),
			want: `<input value="test&quot; onclick=&quot;x">`,
		},
		{
			name: "key not rendered",
			node: vdom.Li(vdom.Key("a"), "item"),
			want: `<li>item</li>`,
		},
		{
			name: "nil",
			node: nil,
			want: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := NewRenderer(RendererConfig{}).RenderToString(tt.node)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if html != tt.want {
				t.Errorf("got %q, want %q", html, tt.want)
			}
		})
	}
}

func TestRenderHydrationIDs(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})

	handler := func() {}
	node := vdom.Div(
		vdom.Button(vdom.OnClick(handler), vdom.Text("First")),
		vdom.P("static"),
		vdom.Form(vdom.OnSubmit(func(vdom.Event) {})),
	)
	html, err := renderer.RenderToString(node)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(html, `<button data-on-click="true" data-hid="h1">`) {
		t.Errorf("button should carry h1, got %q", html)
	}
	if !strings.Contains(html, `<p>static</p>`) {
		t.Errorf("non-interactive elements get no hid, got %q", html)
	}
	if !strings.Contains(html, `data-hid="h2"`) {
		t.Errorf("form should carry h2, got %q", html)
	}

	handlers := renderer.GetHandlers()
	if _, ok := handlers["h1_onclick"]; !ok {
		t.Error("h1_onclick handler should be registered")
	}
	if _, ok := handlers["h2_onsubmit"]; !ok {
		t.Error("h2_onsubmit handler should be registered")
	}
	if got := renderer.HandlerKeys(); len(got) != 2 || got[0] != "h1_onclick" {
		t.Errorf("HandlerKeys() = %v", got)
	}
}

func TestRenderRestartsHIDsEachPass(t *testing.T) {
	renderer := NewRenderer(RendererConfig{})
	node := vdom.Button(vdom.OnClick(func() {}), vdom.Text("Go"))

	for i := 0; i < 2; i++ {
		html, _ := renderer.RenderToString(node)
		if !strings.Contains(html, `data-hid="h1"`) {
			t.Errorf("pass %d: expected h1, got %q", i, html)
		}
		if len(renderer.GetHandlers()) != 1 {
			t.Errorf("pass %d: expected one handler, got %d", i, len(renderer.GetHandlers()))
		}
	}
}

func TestRenderComponent(t *testing.T) {
	greeting := vdom.Define("Greeting", func(_ vdom.Ctx, p vdom.Props) *vdom.VNode {
		return vdom.P(vdom.Textf("Hello %s", p.String("firstName")))
	})
	page := vdom.Static("Page", func() *vdom.VNode {
		return vdom.Div(greeting.New(vdom.Props{"firstName": "Jack"}))
	})

	var buf bytes.Buffer
	if err := NewRenderer(RendererConfig{}).RenderToWriter(&buf, page.New(nil)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := buf.String(), "<div><p>Hello Jack</p></div>"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

type mapResolver map[*vdom.ComponentType]*vdom.ComponentType

func (m mapResolver) Resolve(c *vdom.ComponentType) *vdom.ComponentType {
	if r, ok := m[c]; ok {
		return r
	}
	return c
}

func TestRenderResolverSubstitutes(t *testing.T) {
	child := vdom.Static("Child", func() *vdom.VNode { return vdom.P("real") })
	// Same name, different identity: must not be substituted.
	other := vdom.Static("Child", func() *vdom.VNode { return vdom.P("other") })
	mock := vdom.Static("Mock", func() *vdom.VNode { return vdom.Div(vdom.ID("spy-Child")) })

	parent := vdom.Static("Parent", func() *vdom.VNode {
		return vdom.Fragment(child, other)
	})

	renderer := NewRenderer(RendererConfig{Resolver: mapResolver{child: mock}})
	html, err := renderer.RenderToString(parent.New(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `<div id="spy-Child"></div><p>other</p>`; html != want {
		t.Errorf("got %q, want %q", html, want)
	}
}

func TestRenderComponentPanic(t *testing.T) {
	broken := vdom.Static("Broken", func() *vdom.VNode { panic("boom") })

	_, err := NewRenderer(RendererConfig{}).RenderToString(broken.New(nil))
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.HasCode(err, errors.CodeRenderFailed) {
		t.Errorf("expected %s, got %v", errors.CodeRenderFailed, err)
	}
	if !strings.Contains(errors.FromError(err, "").Detail, "Broken panicked: boom") {
		t.Errorf("detail should name the component, got %v", err)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	_, err := NewRenderer(RendererConfig{}).RenderToString(&vdom.VNode{Kind: vdom.VKind(99)})
	if !errors.HasCode(err, errors.CodeRenderFailed) {
		t.Errorf("expected %s, got %v", errors.CodeRenderFailed, err)
	}
}
