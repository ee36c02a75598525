// Package templates holds the example suites written by "vspec init
// --example".
//
// Available templates:
//   - fluent: cases declared as Expect() chains
//   - fixture: cases written as It blocks, with a function spy
//
// Both file names and file contents are text/template templates executed
// against a Config. Generated files are gofmt'ed before they are written.
package templates
