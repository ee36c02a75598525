// Package errors provides structured, coded errors for vspec.
//
// Every failure the DSL surfaces carries a code, a category, a short
// message and, where known, the source location of the test definition
// that produced it:
//
//	err := errors.New(errors.CodeElementNotFound).
//	    WithDetailf("no element matches %s", desc).
//	    At(errors.CallSite(0, "github.com/vango-dev/vspec/"))
//
//	fmt.Print(err.Format())
//	// ERROR E002: Element not found
//	//
//	//   my_component_test.go:27
//	//
//	//   no element matches submit button
//
// Errors compare by code with errors.Is:
//
//	errors.Is(err, errors.New(errors.CodeMisconfiguredSelector))
//
// # Error Categories
//
//   - selector: unknown or duplicate selector names
//   - render: missing elements, missing handlers, render panics
//   - assertion: presence, text and call expectations not met
//   - context: steps added after a test context was finalized
//   - async: pending work that failed or did not settle
//   - config: invalid vspec.json / vspec.yaml
package errors
