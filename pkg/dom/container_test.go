package dom

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/spy"
	"github.com/vango-dev/vspec/pkg/vdom"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var hello = vdom.Define("Hello", func(_ vdom.Ctx, p vdom.Props) *vdom.VNode {
	name := p.String("firstName")
	if name == "" {
		name = "world"
	}
	return vdom.Div(vdom.P(vdom.Textf("Hello, %s!", name)))
})

func TestMountAndText(t *testing.T) {
	c := New(Options{})
	defer c.Remove()

	require.False(t, c.Mounted())
	require.Equal(t, "", c.Text())

	require.NoError(t, c.Mount(hello.New(vdom.Props{"firstName": "Jack"})))
	require.True(t, c.Mounted())
	require.Equal(t, "Hello, Jack!", c.Text())
	require.Equal(t, "<div><p>Hello, Jack!</p></div>", c.HTML())
	require.NotEmpty(t, c.ID())
}

func TestQuery(t *testing.T) {
	c := New(Options{})
	defer c.Remove()

	require.NoError(t, c.Mount(vdom.Div(
		vdom.Span(vdom.ID("bold"), vdom.Class("a b")),
		vdom.Span(vdom.Class("b")),
	)))

	sel, err := c.Query("#bold")
	require.NoError(t, err)
	require.Equal(t, 1, sel.Length())

	sel, err = c.Query(".missing")
	require.NoError(t, err)
	require.Equal(t, 0, sel.Length())

	all, err := c.QueryAll(".b")
	require.NoError(t, err)
	require.Equal(t, 2, all.Length())

	// The wrapper itself never matches.
	sel, err = c.Query("div[data-vspec-container]")
	require.NoError(t, err)
	require.Equal(t, 0, sel.Length())

	_, err = c.Query("div[")
	require.True(t, errors.HasCode(err, errors.CodeMisconfiguredSelector), "got %v", err)
}

func TestSimulateBubblesToForm(t *testing.T) {
	submitted := 0
	c := New(Options{})
	defer c.Remove()

	require.NoError(t, c.Mount(vdom.Form(
		vdom.OnSubmit(func(ev vdom.Event) {
			submitted++
			require.Equal(t, "submit", ev.Type)
		}),
		vdom.Input(vdom.Type("submit")),
	)))

	button, err := c.Query(`input[type="submit"]`)
	require.NoError(t, err)
	require.NoError(t, c.Simulate(button, "submit", nil))
	require.Equal(t, 1, submitted)
}

func TestSimulateCommitsState(t *testing.T) {
	counter := vdom.Define("Counter", func(ctx vdom.Ctx, _ vdom.Props) *vdom.VNode {
		n, setN := vdom.UseState(ctx, 0)
		return vdom.Button(vdom.OnClick(func() { setN(n + 1) }), vdom.Textf("%d", n))
	})

	c := New(Options{})
	defer c.Remove()
	require.NoError(t, c.Mount(counter.New(nil)))

	for want := 1; want <= 2; want++ {
		button, _ := c.Query("button")
		require.NoError(t, c.Simulate(button, "click", nil))
		require.Equal(t, string(rune('0'+want)), c.Text())
	}
}

func TestSimulateErrors(t *testing.T) {
	c := New(Options{})
	defer c.Remove()
	require.NoError(t, c.Mount(vdom.Div(vdom.P("static"))))

	empty, _ := c.Query("button")
	err := c.Simulate(empty, "click", nil)
	require.True(t, errors.HasCode(err, errors.CodeElementNotFound), "got %v", err)

	p, _ := c.Query("p")
	err = c.Simulate(p, "click", nil)
	require.True(t, errors.HasCode(err, errors.CodeHandlerNotFound), "got %v", err)
}

func TestMountEffectUsesEnv(t *testing.T) {
	fetch := spy.New("fetch")
	env := vdom.NewEnv()
	env.Set("fetch", fetch.Fn())

	f := vdom.Define("F", func(ctx vdom.Ctx, _ vdom.Props) *vdom.VNode {
		ctx.Effect(func() { ctx.Env().Call("fetch", "/myapi", vdom.Props{"mode": "origin"}) })
		return vdom.Div()
	})

	c := New(Options{Env: env})
	defer c.Remove()
	require.NoError(t, c.Mount(f.New(nil)))
	require.True(t, fetch.CalledWith("/myapi", vdom.Props{"mode": "origin"}))
	require.Equal(t, 1, fetch.CallCount())

	// Re-mounting the same tree keeps the instance; the effect does not rerun.
	require.NoError(t, c.Mount(f.New(nil)))
	require.Equal(t, 1, fetch.CallCount())
}

func TestWaitCommitsAsyncState(t *testing.T) {
	env := vdom.NewEnv()
	env.Set("fetch", spy.Stub("fetch", spy.FetchResponseOK("Hello, world!")).Fn())

	f2 := vdom.Define("F2", func(ctx vdom.Ctx, _ vdom.Props) *vdom.VNode {
		message, setMessage := vdom.UseState(ctx, "")
		ctx.Effect(func() {
			ctx.Go(func(context.Context) error {
				resp := ctx.Env().Call("fetch", "/myapi", vdom.Props{"mode": "origin"}).(*spy.Response)
				var body string
				if err := resp.JSON(&body); err != nil {
					return err
				}
				setMessage(body)
				return nil
			})
		})
		return vdom.Div(message)
	})

	c := New(Options{Env: env})
	defer c.Remove()
	require.NoError(t, c.Mount(f2.New(nil)))
	require.NoError(t, c.Wait(context.Background()))
	require.Equal(t, "Hello, world!", c.Text())
}

func TestWaitErrors(t *testing.T) {
	boom := stderrors.New("boom")
	failing := vdom.Define("Failing", func(ctx vdom.Ctx, _ vdom.Props) *vdom.VNode {
		ctx.Effect(func() {
			ctx.Go(func(context.Context) error { return boom })
		})
		return vdom.Div()
	})

	c := New(Options{})
	defer c.Remove()
	require.NoError(t, c.Mount(failing.New(nil)))
	err := c.Wait(context.Background())
	require.True(t, errors.HasCode(err, errors.CodeAsyncWorkFailed), "got %v", err)
	require.ErrorIs(t, err, boom)

	hung := vdom.Define("Hung", func(ctx vdom.Ctx, _ vdom.Props) *vdom.VNode {
		ctx.Effect(func() {
			ctx.Go(func(ctx context.Context) error {
				<-ctx.Done()
				return nil
			})
		})
		return vdom.Div()
	})

	c2 := New(Options{})
	defer c2.Remove()
	require.NoError(t, c2.Mount(hung.New(nil)))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = c2.Wait(ctx)
	require.True(t, errors.HasCode(err, errors.CodeWaitTimeout), "got %v", err)
}

func TestPanicsBecomeErrors(t *testing.T) {
	effect := vdom.Define("EffectPanics", func(ctx vdom.Ctx, _ vdom.Props) *vdom.VNode {
		ctx.Effect(func() { ctx.Env().Call("fetch") })
		return vdom.Div()
	})
	async := vdom.Define("AsyncPanics", func(ctx vdom.Ctx, _ vdom.Props) *vdom.VNode {
		ctx.Effect(func() {
			ctx.Go(func(context.Context) error {
				ctx.Env().Call("fetch")
				return nil
			})
		})
		return vdom.Div()
	})
	handler := vdom.Define("HandlerPanics", func(vdom.Ctx, vdom.Props) *vdom.VNode {
		return vdom.Button(vdom.OnClick(func() { panic("boom") }), "go")
	})

	c := New(Options{})
	defer c.Remove()
	err := c.Mount(effect.New(nil))
	require.True(t, errors.HasCode(err, errors.CodeRenderFailed), "got %v", err)
	require.Contains(t, err.Error(), "effect panicked")

	c2 := New(Options{})
	defer c2.Remove()
	require.NoError(t, c2.Mount(async.New(nil)))
	err = c2.Wait(context.Background())
	require.True(t, errors.HasCode(err, errors.CodeAsyncWorkFailed), "got %v", err)
	require.Contains(t, err.Error(), `env function "fetch" is not defined`)

	c3 := New(Options{})
	defer c3.Remove()
	require.NoError(t, c3.Mount(handler.New(nil)))
	btn, err := c3.Query("button")
	require.NoError(t, err)
	err = c3.Simulate(btn, "click", nil)
	require.True(t, errors.HasCode(err, errors.CodeRenderFailed), "got %v", err)
	require.Contains(t, err.Error(), "click handler panicked: boom")
}

func TestRemove(t *testing.T) {
	c := New(Options{})
	require.NoError(t, c.Mount(hello.New(nil)))
	c.Remove()
	c.Remove()

	require.False(t, c.Mounted())
	require.Equal(t, "", c.Text())
	require.True(t, errors.HasCode(c.Mount(hello.New(nil)), errors.CodeRenderFailed))
}
