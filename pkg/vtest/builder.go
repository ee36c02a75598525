package vtest

import (
	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/action"
	"github.com/vango-dev/vspec/pkg/selector"
	"github.com/vango-dev/vspec/pkg/testctx"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// Builder declares a case as a chain of steps. Each call appends to the
// suite's pending context and returns the builder; AsTest ends the chain,
// registers the case under a name built from its steps and starts a new
// chain.
//
//	s.Expect().
//	    WhenSubmitting(selector.SubmitButton()).
//	    ToRender(selector.Disabled(selector.SubmitButton())).
//	    AsTest()
//
// registers "renders a disabled submit button when submitting submit button".
type Builder struct {
	suite *Suite
}

// Mounted adds a mount step.
func (b *Builder) Mounted() *Builder {
	return b.act("Mounted", action.Render{})
}

// MountedWithProps adds a mount step with props merged over the suite's.
func (b *Builder) MountedWithProps(props vdom.Props) *Builder {
	return b.act("MountedWithProps", action.Render{Props: props.Clone()})
}

// WithProps merges props into the mount props of this case only.
func (b *Builder) WithProps(props vdom.Props) *Builder {
	if b.suite.run.open("Expect().WithProps") {
		b.record(b.pending().MergeProps(props))
	}
	return b
}

// WhenSubmitting adds a submit on the element sel finds.
func (b *Builder) WhenSubmitting(sel selector.Selector) *Builder {
	return b.act("WhenSubmitting", action.Submit{Selector: sel, Registry: b.suite.run.selectors})
}

// WhenClicking adds a click on the element sel finds.
func (b *Builder) WhenClicking(sel selector.Selector) *Builder {
	return b.act("WhenClicking", action.Click{Selector: sel, Registry: b.suite.run.selectors})
}

// AfterPromisesComplete adds a wait for pending work.
func (b *Builder) AfterPromisesComplete() *Builder {
	return b.act("AfterPromisesComplete", action.Wait{})
}

// ToRender expects sel to match an element.
func (b *Builder) ToRender(sel selector.Selector) *Builder {
	return b.assert("ToRender", action.RenderPresence{Selector: sel, Registry: b.suite.run.selectors})
}

// ToNotRender expects sel to match nothing.
func (b *Builder) ToNotRender(sel selector.Selector) *Builder {
	return b.assert("ToNotRender", action.RenderPresence{Selector: sel, Negate: true, Registry: b.suite.run.selectors})
}

// ToCall expects the spy installed under name to have been called with
// args.
func (b *Builder) ToCall(name string, args ...any) *Builder {
	return b.assert("ToCall", action.SpyCalled{Target: name, Args: args})
}

// ToFetchData expects the "fetch" spy to have been called with args.
func (b *Builder) ToFetchData(args ...any) *Builder {
	return b.assert("ToFetchData", action.SpyCalled{Target: "fetch", Args: args})
}

// ToHaveText expects the container text to equal want.
func (b *Builder) ToHaveText(want string) *Builder {
	return b.assert("ToHaveText", action.TextEquals{Want: want})
}

// ToRenderComponent expects the spy substituted for comp to have rendered.
func (b *Builder) ToRenderComponent(comp *vdom.ComponentType) *Builder {
	return b.assert("ToRenderComponent", rendered{comp: comp})
}

// ToRenderComponentWithProps expects the spy substituted for comp to have
// rendered with props containing partial.
func (b *Builder) ToRenderComponentWithProps(comp *vdom.ComponentType, partial vdom.Props) *Builder {
	return b.assert("ToRenderComponentWithProps", rendered{comp: comp, props: partial.Clone()})
}

// AsTest registers the chain as a case of the suite and resets the chain.
// Failures of the case are reported at the line calling AsTest. A chain
// without expectations is a definition error (E005).
func (b *Builder) AsTest() {
	rn := b.suite.run
	if !rn.open("Expect().AsTest") {
		return
	}

	plan := rn.pending.Finalize()
	rn.pending.Reset()
	plan.Location = errors.CallSite(1, modulePrefix)

	if len(plan.Assert) == 0 {
		rn.r.Helper()
		err := errors.New(errors.CodeEmptyTest).
			WithDetailf("the chain %q has no expectations", plan.Description())
		if plan.Location != nil {
			err = err.WithLocation(plan.Location.File, plan.Location.Line, 0)
		}
		rn.r.Fatalf("%s", formatError(err))
		return
	}

	name := plan.Description()
	rn.logger.Debug("case declared", "name", name, "at", plan.Location.String())
	b.suite.items = append(b.suite.items, item{name: name, plan: &plan})
}

func (b *Builder) pending() *testctx.Context {
	return b.suite.run.pending
}

func (b *Builder) act(op string, a action.Action) *Builder {
	if b.suite.run.open("Expect()." + op) {
		b.record(b.pending().Append(testctx.KindAct, a))
	}
	return b
}

func (b *Builder) assert(op string, a action.Assertion) *Builder {
	if b.suite.run.open("Expect()." + op) {
		b.record(b.pending().Append(testctx.KindAssert, a))
	}
	return b
}

func (b *Builder) record(err error) {
	if err != nil {
		b.suite.run.r.Fatalf("%s", formatError(err))
	}
}
