// Package action holds the steps a test is made of.
//
// An Action (Render, Submit, Click, Wait) changes the mounted component;
// an Assertion (RenderPresence, SpyCalled, TextEquals) checks it. Both
// describe themselves so the test name can be generated from the steps:
//
//	renders element with id 'bold' when component mounts
//
// Steps run against a Harness, which owns the container and the spies of
// the current test.
package action
