package vtest

import (
	"fmt"
	"runtime"
	"strings"
	"testing"
)

// fakeRunner runs subtests on their own goroutines like testing does, and
// records runs and failures instead of reporting them.
type fakeRunner struct {
	name   string
	parent *fakeRunner
	events *[]string
	failed bool
}

func runFake(fn func(r runner)) *fakeRunner {
	root := &fakeRunner{name: "Test", events: &[]string{}}
	root.Run("root", fn)
	return root
}

func (f *fakeRunner) Helper()      {}
func (f *fakeRunner) Name() string { return f.name }
func (f *fakeRunner) Failed() bool { return f.failed }

// T returns nil; nothing under test needs a real *testing.T.
func (f *fakeRunner) T() *testing.T { return nil }

func (f *fakeRunner) Logf(format string, args ...any) {}

func (f *fakeRunner) Run(name string, fn func(runner)) bool {
	child := &fakeRunner{name: f.name + "/" + name, parent: f, events: f.events}
	*f.events = append(*f.events, "run "+child.name)

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(child)
	}()
	<-done

	if child.failed {
		f.markFailed()
	}
	return !child.failed
}

func (f *fakeRunner) Errorf(format string, args ...any) {
	f.markFailed()
	*f.events = append(*f.events, "fail "+f.name+": "+fmt.Sprintf(format, args...))
}

func (f *fakeRunner) Fatalf(format string, args ...any) {
	f.Errorf(format, args...)
	runtime.Goexit()
}

func (f *fakeRunner) markFailed() {
	for r := f; r != nil; r = r.parent {
		r.failed = true
	}
}

// runs returns the names of the subtests run below the root, without the
// "Test/root/" prefix.
func (f *fakeRunner) runs() []string {
	var out []string
	for _, e := range *f.events {
		if name, ok := strings.CutPrefix(e, "run Test/root/"); ok {
			out = append(out, name)
		}
	}
	return out
}

// failures returns the failure messages.
func (f *fakeRunner) failures() []string {
	var out []string
	for _, e := range *f.events {
		if strings.HasPrefix(e, "fail ") {
			out = append(out, e)
		}
	}
	return out
}
