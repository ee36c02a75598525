// Package watch polls source trees for changes to Go files and vspec
// configuration, for "vspec test --watch".
package watch
