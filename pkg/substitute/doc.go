// Package substitute swaps child components for observable stand-ins.
//
// The renderer asks a Registry for every component it instantiates and
// renders whatever comes back, so a parent keeps its real structure while
// a dependency is replaced:
//
//	reg := substitute.NewRegistry()
//	child := substitute.NewComponentSpy(Child, "")
//	child.Install(reg)
//	// rendering Parent now emits <div id="spy-Child"></div> for Child
//	child.CalledWith(vdom.Props{"randomProp": 123})
package substitute
