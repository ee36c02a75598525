// Package spy provides recording stand-ins for the named dependencies a
// component reaches through its vdom.Env.
//
//	fetch := spy.Stub("fetch", spy.FetchResponseOK("Hello, world!"))
//	env.Set("fetch", fetch.Fn())
//	// ... mount and wait ...
//	fetch.CalledWith("/myapi", vdom.Props{"mode": "origin"}) // true
//
// Argument matching treats Props as partial expectations.
package spy
