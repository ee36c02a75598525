package vdom

import "testing"

func TestEnvSetCall(t *testing.T) {
	env := NewEnv()
	env.Set("fetch", func(args ...any) any { return args[0] })

	if got := env.Call("fetch", "/myapi"); got != "/myapi" {
		t.Errorf("Call() = %v, want /myapi", got)
	}
	if names := env.Names(); len(names) != 1 || names[0] != "fetch" {
		t.Errorf("Names() = %v", names)
	}
}

func TestEnvCallUndefinedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for undefined function")
		}
	}()
	NewEnv().Call("alert")
}

func TestEnvSnapshotRestore(t *testing.T) {
	env := NewEnv()
	env.Set("fetch", func(...any) any { return "real" })
	env.Snapshot()

	env.Set("fetch", func(...any) any { return "stub" })
	env.Set("alert", func(...any) any { return nil })
	env.Restore()

	if got := env.Call("fetch"); got != "real" {
		t.Errorf("after Restore fetch = %v, want real", got)
	}
	if _, ok := env.Func("alert"); ok {
		t.Error("alert should be gone after Restore")
	}
}
