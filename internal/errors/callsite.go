package errors

import (
	"runtime"
	"strings"
)

// CallSite returns the first stack frame outside the packages whose import
// path starts with one of internal, skipping skip frames above the caller.
// Frames from _test.go files always count as outside so a module's own
// tests report their call sites too. Returns nil when no frame qualifies.
func CallSite(skip int, internal ...string) *Location {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(skip+2, pcs)
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		if frame.Function != "" && !isInternalFrame(frame, internal) {
			return &Location{File: frame.File, Line: frame.Line, Function: frame.Function}
		}
		if !more {
			return nil
		}
	}
}

func isInternalFrame(frame runtime.Frame, internal []string) bool {
	if strings.HasSuffix(frame.File, "_test.go") {
		return false
	}
	if strings.HasPrefix(frame.Function, "runtime.") || strings.HasPrefix(frame.Function, "testing.") {
		return true
	}
	for _, prefix := range internal {
		if strings.HasPrefix(frame.Function, prefix) {
			return true
		}
	}
	return false
}
