package action

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/selector"
	"github.com/vango-dev/vspec/pkg/spy"
)

// Assertion is one assert step. Evaluate returns nil on success and an
// E003 error with a diagnostic otherwise.
type Assertion interface {
	Evaluate(ctx context.Context, h Harness) error
	Describe() string
}

// RenderPresence passes when Selector finds an element, or when it finds
// none and Negate is set.
type RenderPresence struct {
	Selector selector.Selector
	Negate   bool
	Registry *selector.Registry
}

func (a RenderPresence) Evaluate(ctx context.Context, h Harness) error {
	found, res, err := Find(ctx, h, a.Selector)
	if err != nil {
		return err
	}

	present := found.Length() > 0
	if present != a.Negate {
		return nil
	}

	failure := errors.New(errors.CodeAssertionFailure)
	if a.Negate {
		return failure.WithDetailf("expected %s not to be rendered, but found %s (query %s)",
			res.Description, outerHTML(found), res.Query)
	}
	return failure.WithDetailf("expected %s to be rendered, but it was not found (query %s)",
		res.Description, res.Query).
		WithSuggestion(containerSnippet(h))
}

func (a RenderPresence) Describe() string {
	desc := a.Selector.Describe(a.Registry)
	if a.Negate {
		return "does not render " + desc
	}
	return "renders " + desc
}

// SpyCalled passes when the spy installed under Target recorded at least
// one call matching Args, or any call when Args is empty. Props arguments
// match as subsets. A Target without a spy is E008.
type SpyCalled struct {
	Target string
	Args   []any
}

func (a SpyCalled) Evaluate(ctx context.Context, h Harness) error {
	if err := h.EnsureMounted(ctx); err != nil {
		return err
	}
	s, ok := h.Spy(a.Target)
	if !ok {
		return errors.New(errors.CodeHandlerNotFound).
			WithDetailf("no spy is installed for %q", a.Target).
			WithSuggestion(fmt.Sprintf("declare WithSpy(%q) or WithStub(%q, ...) in the describe block", a.Target, a.Target))
	}
	if len(a.Args) == 0 && s.Called() || s.CalledWith(a.Args...) {
		return nil
	}

	calls := s.Calls()
	if len(calls) == 0 {
		return errors.New(errors.CodeAssertionFailure).
			WithDetailf("expected %s to be called with (%s), but it was never called", a.Target, spy.FormatArgs(a.Args))
	}
	recorded := make([]string, len(calls))
	for i, c := range calls {
		recorded[i] = fmt.Sprintf("  %d: (%s)", i+1, spy.FormatArgs(c.Args))
	}
	return errors.New(errors.CodeAssertionFailure).
		WithDetailf("expected %s to be called with (%s); recorded calls:\n%s",
			a.Target, spy.FormatArgs(a.Args), strings.Join(recorded, "\n"))
}

func (a SpyCalled) Describe() string {
	if len(a.Args) == 0 {
		return "calls " + a.Target
	}
	return fmt.Sprintf("calls %s with %s", a.Target, spy.FormatArgs(a.Args))
}

// TextEquals passes when the container's text content equals Want.
type TextEquals struct {
	Want string
}

func (a TextEquals) Evaluate(ctx context.Context, h Harness) error {
	if err := h.EnsureMounted(ctx); err != nil {
		return err
	}
	got := h.Container().Text()
	if got == a.Want {
		return nil
	}
	return errors.New(errors.CodeAssertionFailure).
		WithDetailf("container text mismatch\n  want: %q\n  got:  %q\n  diff: %s", a.Want, got, TextDiff(a.Want, got))
}

func (a TextEquals) Describe() string {
	return fmt.Sprintf("renders text %q", a.Want)
}

// TextDiff renders a character diff from want to got, marking removed
// text as [-...-] and inserted text as {+...+}.
func TextDiff(want, got string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(want, got, false))

	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		default:
			b.WriteString(d.Text)
		}
	}
	return b.String()
}

func outerHTML(sel *goquery.Selection) string {
	html, err := goquery.OuterHtml(sel)
	if err != nil {
		return "<" + goquery.NodeName(sel) + ">"
	}
	return html
}
