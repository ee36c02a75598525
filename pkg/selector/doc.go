// Package selector names the elements a test talks about.
//
// A Spec registers a name with a query template and a description
// template. Binding a name to a parameter yields a Selector, which is
// resolved lazily against a Registry:
//
//	sel := selector.Disabled(selector.SubmitButton())
//	res, err := sel.Resolve(selector.Default)
//	// res.Query       == `input[type="submit"][disabled], button[type="submit"][disabled]`
//	// res.Description == "a disabled submit button"
//
// Resolving a name that was never registered fails with E001 instead of
// matching nothing.
package selector
