package action

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/dom"
	"github.com/vango-dev/vspec/pkg/selector"
	"github.com/vango-dev/vspec/pkg/spy"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// Harness is the per-test environment actions and assertions run against.
type Harness interface {
	// Mount renders the component under test with the accumulated props
	// merged with props (props win) and records that a mount happened.
	Mount(ctx context.Context, props vdom.Props) error

	// EnsureMounted mounts with the accumulated props unless a mount
	// already happened in this test.
	EnsureMounted(ctx context.Context) error

	// Container returns the current test's container.
	Container() *dom.Container

	// Selectors returns the registry selectors resolve against.
	Selectors() *selector.Registry

	// Wait blocks until tracked asynchronous work has settled.
	Wait(ctx context.Context) error

	// Spy returns the function spy installed under name.
	Spy(name string) (*spy.Func, bool)
}

// Action is one act step.
type Action interface {
	Run(ctx context.Context, h Harness) error
	Describe() string
	Kind() string
}

// Find resolves sel against h, mounting first if nothing is mounted yet,
// and returns the first matching element, possibly empty.
func Find(ctx context.Context, h Harness, sel selector.Selector) (*goquery.Selection, selector.Resolved, error) {
	res, err := sel.Resolve(h.Selectors())
	if err != nil {
		return nil, res, err
	}
	if err := h.EnsureMounted(ctx); err != nil {
		return nil, res, err
	}
	found, err := h.Container().Query(res.Query)
	if err != nil {
		return nil, res, err
	}
	return found, res, nil
}

// FindOne is Find for steps that need an element: an empty match is E002.
func FindOne(ctx context.Context, h Harness, sel selector.Selector) (*goquery.Selection, error) {
	found, res, err := Find(ctx, h, sel)
	if err != nil {
		return nil, err
	}
	if found.Length() == 0 {
		return nil, errors.New(errors.CodeElementNotFound).
			WithDetailf("no %s in the container (query %s)", res.Description, res.Query).
			WithSuggestion(containerSnippet(h))
	}
	return found, nil
}

// Render mounts the component under test.
type Render struct {
	Props vdom.Props
}

func (a Render) Run(ctx context.Context, h Harness) error {
	return h.Mount(ctx, a.Props)
}

func (Render) Describe() string { return "component mounts" }
func (Render) Kind() string     { return "render" }

// Submit dispatches a submit event on the element sel resolves to.
type Submit struct {
	Selector selector.Selector

	// Registry describes Selector; nil means selector.Default.
	Registry *selector.Registry
}

func (a Submit) Run(ctx context.Context, h Harness) error {
	return dispatch(ctx, h, a.Selector, "submit")
}

func (a Submit) Describe() string { return "submitting " + a.Selector.Describe(a.Registry) }
func (Submit) Kind() string       { return "submit" }

// Click dispatches a click event on the element sel resolves to.
type Click struct {
	Selector selector.Selector
	Registry *selector.Registry
}

func (a Click) Run(ctx context.Context, h Harness) error {
	return dispatch(ctx, h, a.Selector, "click")
}

func (a Click) Describe() string { return "clicking " + a.Selector.Describe(a.Registry) }
func (Click) Kind() string       { return "click" }

// Wait blocks until pending asynchronous work has settled.
type Wait struct{}

func (Wait) Run(ctx context.Context, h Harness) error {
	if err := h.EnsureMounted(ctx); err != nil {
		return err
	}
	return h.Wait(ctx)
}

func (Wait) Describe() string { return "waiting for tasks to complete" }
func (Wait) Kind() string     { return "wait" }

func dispatch(ctx context.Context, h Harness, sel selector.Selector, event string) error {
	target, err := FindOne(ctx, h, sel)
	if err != nil {
		return err
	}
	return h.Container().Simulate(target, event, nil)
}

func containerSnippet(h Harness) string {
	return fmt.Sprintf("container HTML: %s", truncate(h.Container().HTML(), 300))
}

// truncate cuts s to at most limit bytes on a rune boundary.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
