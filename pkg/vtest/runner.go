package vtest

import "testing"

// runner is the part of *testing.T the orchestrator drives. It lets
// failure paths be exercised without failing the enclosing test.
type runner interface {
	Helper()
	Name() string
	Run(name string, fn func(runner)) bool
	Errorf(format string, args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
	Failed() bool
	T() *testing.T
}

type stdRunner struct {
	t *testing.T
}

func (r stdRunner) Helper()                           { r.t.Helper() }
func (r stdRunner) Name() string                      { return r.t.Name() }
func (r stdRunner) Errorf(format string, args ...any) { r.t.Helper(); r.t.Errorf(format, args...) }
func (r stdRunner) Fatalf(format string, args ...any) { r.t.Helper(); r.t.Fatalf(format, args...) }
func (r stdRunner) Logf(format string, args ...any)   { r.t.Helper(); r.t.Logf(format, args...) }
func (r stdRunner) Failed() bool                      { return r.t.Failed() }
func (r stdRunner) T() *testing.T                     { return r.t }

func (r stdRunner) Run(name string, fn func(runner)) bool {
	r.t.Helper()
	return r.t.Run(name, func(t *testing.T) { fn(stdRunner{t}) })
}
