package vtest

import (
	"context"
	"log/slog"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/action"
	"github.com/vango-dev/vspec/pkg/dom"
	"github.com/vango-dev/vspec/pkg/instrument"
	"github.com/vango-dev/vspec/pkg/selector"
	"github.com/vango-dev/vspec/pkg/spy"
	"github.com/vango-dev/vspec/pkg/substitute"
	"github.com/vango-dev/vspec/pkg/testctx"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// Case is the fixture of one running test. Its methods act on the case's
// own container and fail the test on error, so a body reads as a list of
// steps:
//
//	s.It("thanks the user after submitting", func(c *vtest.Case) {
//	    c.Submit(selector.FormWithID("signup"))
//	    c.ExpectRender(selector.ElementWithClass("thanks"))
//	})
//
// Any query made before an explicit mount mounts the component once with
// the props accumulated by setup.
type Case struct {
	r         runner
	run       *run
	ctx       context.Context
	end       func(error)
	tc        *testctx.Context
	container *dom.Container
	h         harness
	logger    *slog.Logger

	spies map[*vdom.ComponentType]*substitute.ComponentSpy
	funcs map[string]*spy.Func
	err   error
}

func newContainer(rn *run, logger *slog.Logger) *dom.Container {
	return dom.New(dom.Options{
		Tag:      rn.config.ContainerTag,
		Resolver: rn.subs,
		Env:      rn.env,
		Logger:   logger,
	})
}

// T returns the underlying *testing.T.
func (c *Case) T() *testing.T { return c.r.T() }

// Context returns the case's context. Observers attach spans to it.
func (c *Case) Context() context.Context { return c.ctx }

// Env returns the dependency table of the case.
func (c *Case) Env() *vdom.Env { return c.run.env }

// Container returns the mount container, mounting first if needed.
func (c *Case) Container() *dom.Container {
	c.r.Helper()
	c.must(c.h.EnsureMounted(c.ctx))
	return c.container
}

// Text returns the text content of the container, mounting first if needed.
func (c *Case) Text() string {
	c.r.Helper()
	return c.Container().Text()
}

// Mount renders the component with the accumulated props.
func (c *Case) Mount() {
	c.r.Helper()
	c.MountWithProps(nil)
}

// MountWithProps renders the component with the accumulated props merged
// with props; props wins on conflict.
func (c *Case) MountWithProps(props vdom.Props) {
	c.r.Helper()
	c.must(c.act(action.Render{Props: props}))
}

// MountAndWait mounts, then waits for the work started by mount effects.
func (c *Case) MountAndWait() {
	c.r.Helper()
	c.MountAndWaitWithProps(nil)
}

// MountAndWaitWithProps is MountWithProps followed by a wait for pending
// work.
func (c *Case) MountAndWaitWithProps(props vdom.Props) {
	c.r.Helper()
	c.must(c.act(action.Render{Props: props}))
	c.must(c.act(action.Wait{}))
}

// Wait blocks until pending work settles, bounded by the wait timeout.
func (c *Case) Wait() {
	c.r.Helper()
	c.must(c.act(action.Wait{}))
}

// Click dispatches a click on the element sel finds.
func (c *Case) Click(sel selector.Selector) {
	c.r.Helper()
	c.must(c.act(action.Click{Selector: sel, Registry: c.run.selectors}))
}

// Submit dispatches a submit on the element sel finds.
func (c *Case) Submit(sel selector.Selector) {
	c.r.Helper()
	c.must(c.act(action.Submit{Selector: sel, Registry: c.run.selectors}))
}

// Find returns the first element sel matches, which may be empty. A
// misconfigured selector fails the test.
func (c *Case) Find(sel selector.Selector) *goquery.Selection {
	c.r.Helper()
	found, _, err := action.Find(c.ctx, c.h, sel)
	c.must(err)
	return found
}

// Exists reports whether sel matches an element.
func (c *Case) Exists(sel selector.Selector) bool {
	c.r.Helper()
	return c.Find(sel).Length() > 0
}

// Element returns the first element matching css.
func (c *Case) Element(css string) *goquery.Selection {
	c.r.Helper()
	return c.Find(selector.Element(css))
}

// ElementWithID returns the element with the given id.
func (c *Case) ElementWithID(id string) *goquery.Selection {
	c.r.Helper()
	return c.Find(selector.ElementWithID(id))
}

// ElementWithClass returns the first element carrying class.
func (c *Case) ElementWithClass(class string) *goquery.Selection {
	c.r.Helper()
	return c.Find(selector.ElementWithClass(class))
}

// Button returns the first button, or the button with the given id.
func (c *Case) Button(id ...string) *goquery.Selection {
	c.r.Helper()
	return c.Find(selector.Button(id...))
}

// SubmitButton returns the first submit input or button.
func (c *Case) SubmitButton() *goquery.Selection {
	c.r.Helper()
	return c.Find(selector.SubmitButton())
}

// FormWithID returns the form with the given id.
func (c *Case) FormWithID(id string) *goquery.Selection {
	c.r.Helper()
	return c.Find(selector.FormWithID(id))
}

// Spy returns the spy substituted for comp, mounting first if needed.
func (c *Case) Spy(comp *vdom.ComponentType) *substitute.ComponentSpy {
	c.r.Helper()
	sp, ok := c.spies[comp]
	if !ok {
		c.fail(noComponentSpy(comp), true)
		return nil
	}
	c.must(c.h.EnsureMounted(c.ctx))
	return sp
}

// SpyFunc returns the spy or stub installed under name.
func (c *Case) SpyFunc(name string) *spy.Func {
	c.r.Helper()
	f, ok := c.funcs[name]
	if !ok {
		c.fail(errors.New(errors.CodeHandlerNotFound).
			WithDetailf("no spy is installed for %q", name).
			WithSuggestion("declare s.WithSpy(\""+name+"\") or s.WithStub in the Describe block"), true)
		return nil
	}
	return f
}

// ExpectRender fails the test unless sel matches an element.
func (c *Case) ExpectRender(sel selector.Selector) {
	c.r.Helper()
	c.should(c.check(action.RenderPresence{Selector: sel, Registry: c.run.selectors}))
}

// ExpectNotRender fails the test if sel matches an element.
func (c *Case) ExpectNotRender(sel selector.Selector) {
	c.r.Helper()
	c.should(c.check(action.RenderPresence{Selector: sel, Negate: true, Registry: c.run.selectors}))
}

// ExpectCalledWith fails the test unless the spy installed under name was
// called with args. Props arguments match as subsets.
func (c *Case) ExpectCalledWith(name string, args ...any) {
	c.r.Helper()
	c.should(c.check(action.SpyCalled{Target: name, Args: args}))
}

// ExpectText fails the test unless the container text equals want.
func (c *Case) ExpectText(want string) {
	c.r.Helper()
	c.should(c.check(action.TextEquals{Want: want}))
}

// ExpectRendered fails the test unless the spy for comp rendered.
func (c *Case) ExpectRendered(comp *vdom.ComponentType) {
	c.r.Helper()
	c.should(c.check(rendered{comp: comp}))
}

// ExpectRenderedWithProps fails the test unless the spy for comp rendered
// with props containing partial.
func (c *Case) ExpectRenderedWithProps(comp *vdom.ComponentType, partial vdom.Props) {
	c.r.Helper()
	c.should(c.check(rendered{comp: comp, props: partial}))
}

// runPlan runs the steps of a builder case: every act step in order, then
// every assertion. Without act steps the component is mounted.
func (c *Case) runPlan(plan testctx.Plan) {
	c.r.Helper()
	acts := plan.Act
	if len(acts) == 0 {
		acts = []action.Action{action.Render{}}
	}
	for _, a := range acts {
		if err := c.act(a); err != nil {
			c.fail(at(err, plan.Location), true)
		}
	}
	for _, a := range plan.Assert {
		if err := c.check(a); err != nil {
			c.fail(at(err, plan.Location), false)
		}
	}
}

func (c *Case) install(f *spy.Func) {
	c.funcs[f.Name()] = f
	c.run.env.Set(f.Name(), f.Fn())
	c.logger.Debug("spy installed", "name", f.Name())
}

func (c *Case) act(a action.Action) error {
	return c.step(a.Kind(), a.Describe(), func(ctx context.Context) error {
		return a.Run(ctx, c.h)
	})
}

func (c *Case) check(a action.Assertion) error {
	return c.step(instrument.KindAssert, a.Describe(), func(ctx context.Context) error {
		return a.Evaluate(ctx, c.h)
	})
}

func (c *Case) step(kind, description string, fn func(context.Context) error) error {
	ctx, end := c.run.observer.StartStep(c.ctx, kind, description)
	err := fn(ctx)
	end(err)
	c.logger.Debug("step", "kind", kind, "description", description, "ok", err == nil)
	return err
}

// must fails the test and stops it on err.
func (c *Case) must(err error) {
	if err != nil {
		c.r.Helper()
		c.fail(err, true)
	}
}

// should fails the test on err and lets it continue.
func (c *Case) should(err error) {
	if err != nil {
		c.r.Helper()
		c.fail(err, false)
	}
}

func (c *Case) fail(err error, fatal bool) {
	c.r.Helper()
	if c.err == nil {
		c.err = err
	}
	if fatal {
		c.r.Fatalf("%s", formatError(err))
		return
	}
	c.r.Errorf("%s", formatError(err))
}

// finish tears the case down and reports its outcome.
func (c *Case) finish() {
	c.container.Remove()
	c.run.subs.Clear()
	c.run.env.Restore()
	c.run.current = nil
	c.end(c.err)
}

// at points a failure at loc, the line that declared the case.
func at(err error, loc *errors.Location) error {
	if loc == nil {
		return err
	}
	ve := errors.FromError(err, errors.CodeAssertionFailure)
	return ve.WithLocation(loc.File, loc.Line, loc.Column)
}

// harness exposes a Case to the action catalog.
type harness struct {
	c *Case
}

func (h harness) Mount(_ context.Context, props vdom.Props) error {
	c := h.c
	merged := c.tc.Props().Merge(props)
	c.logger.Debug("mount", "props", merged.Keys())
	if err := c.container.Mount(c.run.comp.New(merged)); err != nil {
		return err
	}
	c.tc.MarkMounted()
	return nil
}

func (h harness) EnsureMounted(ctx context.Context) error {
	if h.c.tc.HasMounted() {
		return nil
	}
	return h.Mount(ctx, nil)
}

func (h harness) Container() *dom.Container     { return h.c.container }
func (h harness) Selectors() *selector.Registry { return h.c.run.selectors }

func (h harness) Spy(name string) (*spy.Func, bool) {
	f, ok := h.c.funcs[name]
	return f, ok
}

func (h harness) Wait(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.c.run.waitTimeout)
	defer cancel()
	return h.c.container.Wait(ctx)
}
