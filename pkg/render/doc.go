// Package render turns vdom trees into HTML for the test container.
//
// A Renderer walks a tree, instantiating components through a Resolver
// (so tests can substitute child components) and a Runtime that keeps
// per-instance hook state between render passes.
//
//	rt := render.NewRuntime(env, logger)
//	renderer := render.NewRenderer(render.RendererConfig{Resolver: registry, Runtime: rt})
//	html, err := renderer.RenderToString(root)
//	err = rt.FlushEffects()
//
// # Hydration IDs
//
// Elements with event handlers receive a data-hid attribute. The handlers
// are collected during rendering under "hid_onevent" keys and can be
// retrieved via GetHandlers; the dom package dispatches simulated events
// through them.
//
// # Asynchronous Work
//
// Work started with Ctx.Go runs in an errgroup owned by the Runtime.
// Runtime.Wait blocks until the current group settles; Runtime.Close
// cancels outstanding work when the container is torn down.
//
// # Security
//
// Text and attribute values are escaped. KindRaw nodes are written as-is
// and should only carry trusted content.
package render
