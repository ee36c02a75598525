// Package dom is the mount target tests query and interact with.
//
// A Container renders a tree to HTML, parses it with goquery and answers
// CSS queries against the result. Simulate dispatches events through the
// handlers the renderer collected, bubbling from the target element to
// its ancestors, and commits any state changes before returning.
package dom
