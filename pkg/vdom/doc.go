// Package vdom provides the component tree model rendered by vspec.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text,
// fragments, component instances and raw HTML. Props holds attributes and
// event handlers for elements, and the property set of a component.
//
// # Components
//
// A ComponentType is a named render function. Component references are
// compared by pointer, so substitution registries can key on them without
// collisions between components that share a name:
//
//	var Greeting = vdom.Define("Greeting", func(ctx vdom.Ctx, p vdom.Props) *vdom.VNode {
//	    return vdom.Div(vdom.P(vdom.Textf("Hello, %s!", p.String("firstName"))))
//	})
//
//	var Page = vdom.Static("Page", func() *vdom.VNode {
//	    return vdom.Fragment(Greeting.New(vdom.Props{"firstName": "Jack"}))
//	})
//
// # Hooks
//
// Render functions receive a Ctx offering per-instance state (UseState),
// mount-time effects (Effect), tracked asynchronous work (Go) and the
// dependency table (Env) through which components reach outside services
// such as "fetch".
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1(Text("Title")),
//	    Button(Type("submit"), OnClick(handler), Text("Save")),
//	)
package vdom
