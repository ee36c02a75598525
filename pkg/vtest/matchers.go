package vtest

import (
	"context"
	"fmt"
	"strings"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/action"
	"github.com/vango-dev/vspec/pkg/spy"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// WasRendered reports whether the spy substituted for comp rendered its
// marker element in c's container. It mounts first if needed.
func WasRendered(c *Case, comp *vdom.ComponentType) bool {
	c.r.Helper()
	return rendered{comp: comp}.Evaluate(c.ctx, c.h) == nil
}

// WasRenderedWithProps reports whether the spy substituted for comp
// rendered and was instantiated at least once with props containing
// partial.
func WasRenderedWithProps(c *Case, comp *vdom.ComponentType, partial vdom.Props) bool {
	c.r.Helper()
	return rendered{comp: comp, props: partial}.Evaluate(c.ctx, c.h) == nil
}

// rendered passes when the spy for comp left its marker element in the
// container and, if props is set, recorded a matching instantiation.
type rendered struct {
	comp  *vdom.ComponentType
	props vdom.Props
}

var _ action.Assertion = rendered{}

func (a rendered) Evaluate(ctx context.Context, h action.Harness) error {
	hh, ok := h.(harness)
	if !ok {
		return errors.Newf(errors.CategoryAssertion, "component spies need a vtest case")
	}
	sp, ok := hh.c.spies[a.comp]
	if !ok {
		return noComponentSpy(a.comp)
	}
	if err := h.EnsureMounted(ctx); err != nil {
		return err
	}

	marker, err := h.Container().Query(sp.MarkerQuery())
	if err != nil {
		return err
	}
	if marker.Length() == 0 {
		return errors.New(errors.CodeAssertionFailure).
			WithDetailf("expected %s to have been rendered, but no element with id '%s' was found", a.comp, sp.MarkerID())
	}
	if a.props == nil || sp.CalledWith(a.props) {
		return nil
	}

	calls := sp.Calls()
	recorded := make([]string, len(calls))
	for i, p := range calls {
		recorded[i] = fmt.Sprintf("  %d: %s", i+1, spy.FormatArgs([]any{p}))
	}
	return errors.New(errors.CodeAssertionFailure).
		WithDetailf("expected %s to have been rendered with props %s; recorded renders:\n%s",
			a.comp, spy.FormatArgs([]any{a.props}), strings.Join(recorded, "\n"))
}

func (a rendered) Describe() string {
	if a.props == nil {
		return "renders " + a.comp.String()
	}
	return fmt.Sprintf("renders %s with props %s", a.comp, spy.FormatArgs([]any{a.props}))
}

func noComponentSpy(comp *vdom.ComponentType) error {
	return errors.New(errors.CodeAssertionFailure).
		WithDetailf("no component spy is installed for %s", comp).
		WithSuggestion(fmt.Sprintf("declare s.WithComponentSpy(%s) in the Describe block", comp))
}
