package spy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vspec/pkg/vdom"
)

func TestFuncRecordsCalls(t *testing.T) {
	fetch := New("fetch")

	require.Nil(t, fetch.Call("/myapi", vdom.Props{"mode": "origin"}))
	require.True(t, fetch.Called())
	require.Equal(t, 1, fetch.CallCount())
	require.Equal(t, []any{"/myapi", vdom.Props{"mode": "origin"}}, fetch.Calls()[0].Args)

	fetch.Reset()
	require.False(t, fetch.Called())
}

func TestStubReturnsResult(t *testing.T) {
	alert := Stub("alert", 42)
	require.Equal(t, 42, alert.Fn()("hi"))

	double := StubFunc("double", func(args ...any) any { return args[0].(int) * 2 })
	require.Equal(t, 8, double.Call(4))
	require.Equal(t, "double", double.Name())
}

func TestCalledWith(t *testing.T) {
	fetch := New("fetch")
	fetch.Call("/myapi", vdom.Props{"mode": "origin", "cache": "no-store"})

	tests := []struct {
		name     string
		expected []any
		want     bool
	}{
		{"exact", []any{"/myapi", vdom.Props{"mode": "origin", "cache": "no-store"}}, true},
		{"partial props", []any{"/myapi", vdom.Props{"mode": "origin"}}, true},
		{"plain map", []any{"/myapi", map[string]any{"mode": "origin"}}, true},
		{"anything", []any{Anything, vdom.Props{}}, true},
		{"type placeholder", []any{mock.AnythingOfType("string"), Anything}, true},
		{"wrong url", []any{"/other", vdom.Props{"mode": "origin"}}, false},
		{"wrong prop value", []any{"/myapi", vdom.Props{"mode": "cors"}}, false},
		{"extra expected key", []any{"/myapi", vdom.Props{"mode": "origin", "x": 1}}, false},
		{"arity", []any{"/myapi"}, false},
		{"props against scalar", []any{vdom.Props{"a": 1}, Anything}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, fetch.CalledWith(tt.expected...))
		})
	}
}

func TestPropsSubsetNested(t *testing.T) {
	got := vdom.Props{"headers": vdom.Props{"accept": "json", "x": "y"}, "n": 1}

	require.True(t, PropsSubset(vdom.Props{"headers": vdom.Props{"accept": "json"}}, got))
	require.False(t, PropsSubset(vdom.Props{"headers": vdom.Props{"accept": "xml"}}, got))
	require.False(t, PropsSubset(vdom.Props{"n": int64(1)}, got))
}

func TestConcurrentCalls(t *testing.T) {
	f := New("fetch")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.Call(i)
		}()
	}
	wg.Wait()
	require.Equal(t, 50, f.CallCount())
}

func TestFormatArgs(t *testing.T) {
	got := FormatArgs([]any{"/myapi", vdom.Props{"mode": "origin", "a": 1}, nil})
	require.Equal(t, `"/myapi", {a: 1, mode: "origin"}, nil`, got)
}

func TestFetchResponses(t *testing.T) {
	ok := FetchResponseOK("Hello, world!")
	require.True(t, ok.OK)
	require.Equal(t, 200, ok.Status)

	var message string
	require.NoError(t, ok.JSON(&message))
	require.Equal(t, "Hello, world!", message)
	require.Equal(t, `"Hello, world!"`, ok.Text())

	failed := FetchResponseError(503)
	require.False(t, failed.OK)
	require.Error(t, failed.JSON(&message))
}
