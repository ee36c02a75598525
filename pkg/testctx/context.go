package testctx

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/action"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// State is the lifecycle position of a Context.
type State int

const (
	// Fresh contexts hold nothing.
	Fresh State = iota
	// Accumulating contexts have received at least one step or prop.
	Accumulating
	// Finalized contexts belong to a running test and reject new steps.
	Finalized
)

func (s State) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Accumulating:
		return "accumulating"
	case Finalized:
		return "finalized"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Kind names the step sequence Append writes to.
type Kind int

const (
	KindAct Kind = iota
	KindAssert
)

func (k Kind) String() string {
	if k == KindAct {
		return "act"
	}
	return "assert"
}

// Context accumulates the arrange, act and assert steps of one test.
type Context struct {
	mu         sync.Mutex
	state      State
	props      vdom.Props
	hasMounted bool
	act        []action.Action
	assert     []action.Assertion
}

// New returns a Fresh context.
func New() *Context {
	return &Context{props: vdom.Props{}}
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Append adds item to the sequence named by kind. Items must be an
// action.Action for KindAct and an action.Assertion for KindAssert.
// Appending to a Finalized context fails with E004.
func (c *Context) Append(kind Kind, item any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutable(fmt.Sprintf("append %s step", kind)); err != nil {
		return err
	}

	switch kind {
	case KindAct:
		a, ok := item.(action.Action)
		if !ok {
			return errors.Newf(errors.CategoryContext, "act step must be an action.Action, got %T", item)
		}
		c.act = append(c.act, a)
	case KindAssert:
		a, ok := item.(action.Assertion)
		if !ok {
			return errors.Newf(errors.CategoryContext, "assert step must be an action.Assertion, got %T", item)
		}
		c.assert = append(c.assert, a)
	default:
		return errors.Newf(errors.CategoryContext, "unknown step kind %d", int(kind))
	}
	c.state = Accumulating
	return nil
}

// MergeProps adds props to the arrange set; later values win.
func (c *Context) MergeProps(props vdom.Props) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutable("merge props"); err != nil {
		return err
	}
	c.props = c.props.Merge(props)
	c.state = Accumulating
	return nil
}

func (c *Context) mutable(op string) error {
	if c.state == Finalized {
		return errors.New(errors.CodeStaleContextMutation).
			WithDetailf("cannot %s: the test context is finalized", op)
	}
	return nil
}

// Props returns a copy of the accumulated props.
func (c *Context) Props() vdom.Props {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.props.Clone()
}

// HasMounted reports whether the current test has mounted.
func (c *Context) HasMounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMounted
}

// MarkMounted records a mount. It is allowed in every state, since
// mounting happens while the test runs.
func (c *Context) MarkMounted() {
	c.mu.Lock()
	c.hasMounted = true
	c.mu.Unlock()
}

// Len returns the number of act and assert steps.
func (c *Context) Len() (act, assert int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.act), len(c.assert)
}

// Finalize freezes the context and returns a snapshot of its steps.
// The snapshot does not share storage with the context.
func (c *Context) Finalize() Plan {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Finalized
	return Plan{
		Props:  c.props.Clone(),
		Act:    append([]action.Action(nil), c.act...),
		Assert: append([]action.Assertion(nil), c.assert...),
	}
}

// Reset empties the context and returns it to Fresh.
func (c *Context) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Fresh
	c.props = vdom.Props{}
	c.hasMounted = false
	c.act = nil
	c.assert = nil
}

// Plan is the frozen step list of one test.
type Plan struct {
	Props  vdom.Props
	Act    []action.Action
	Assert []action.Assertion

	// Location is where the test was declared.
	Location *errors.Location
}

// Description builds the test name: the assertion descriptions joined by
// " and ", then " when " and the description of the last act step. With
// no act step the implicit mount is described.
func (p Plan) Description() string {
	parts := make([]string, len(p.Assert))
	for i, a := range p.Assert {
		parts[i] = a.Describe()
	}

	when := action.Render{}.Describe()
	if n := len(p.Act); n > 0 {
		when = p.Act[n-1].Describe()
	}
	return strings.Join(parts, " and ") + " when " + when
}
