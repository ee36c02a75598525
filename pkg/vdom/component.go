package vdom

import "context"

// RenderFunc renders a component instance for the given props.
type RenderFunc func(ctx Ctx, props Props) *VNode

// ComponentType is a component reference. Identity is the pointer: two
// types created with the same name are distinct components.
type ComponentType struct {
	// Name is used for diagnostics and for marker ids of substituted components.
	Name string

	render RenderFunc
}

// Define creates a component type.
//
// Example:
//
//	var Greeting = vdom.Define("Greeting", func(ctx vdom.Ctx, p vdom.Props) *vdom.VNode {
//	    return vdom.Div(vdom.P(vdom.Textf("Hello, %s!", p.String("firstName"))))
//	})
func Define(name string, render RenderFunc) *ComponentType {
	return &ComponentType{Name: name, render: render}
}

// Static creates a component type that ignores props and hooks.
func Static(name string, render func() *VNode) *ComponentType {
	return Define(name, func(Ctx, Props) *VNode { return render() })
}

// Render invokes the render function. A nil type renders nothing.
func (c *ComponentType) Render(ctx Ctx, props Props) *VNode {
	if c == nil || c.render == nil {
		return nil
	}
	return c.render(ctx, props)
}

// String implements fmt.Stringer.
func (c *ComponentType) String() string {
	if c == nil {
		return "<nil component>"
	}
	return c.Name
}

// New creates a component node that instantiates c with props. Children
// are passed through as the "children" prop.
func (c *ComponentType) New(props Props, children ...any) *VNode {
	p := props.Clone()
	if len(children) > 0 {
		p["children"] = Fragment(children...)
	}
	return &VNode{
		Kind:  KindComponent,
		Type:  c,
		Props: p,
	}
}

// Ctx is the per-instance hook context handed to a RenderFunc.
type Ctx interface {
	// State returns the hook slot value for the current call position,
	// initialising it with initial on first render, and a setter that
	// schedules a re-render. Setters may be called from any goroutine.
	State(initial any) (any, func(any))

	// Effect registers fn to run once after the instance first commits.
	Effect(fn func())

	// Go starts tracked asynchronous work. The harness waits for all
	// tracked work at explicit wait points.
	Go(fn func(ctx context.Context) error)

	// Env returns the dependency table of the current mount.
	Env() *Env
}

// UseState is the typed form of Ctx.State.
//
// Example:
//
//	message, setMessage := vdom.UseState(ctx, "")
func UseState[T any](ctx Ctx, initial T) (T, func(T)) {
	v, set := ctx.State(initial)
	typed, _ := v.(T)
	return typed, func(next T) { set(next) }
}
