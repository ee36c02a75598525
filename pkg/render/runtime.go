package render

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// Runtime holds the hook state of every mounted component instance along
// with the effects and asynchronous work they scheduled. One Runtime backs
// one mounted tree; it is shared by every render pass of that tree.
type Runtime struct {
	mu        sync.Mutex
	env       *vdom.Env
	logger    *slog.Logger
	instances map[string]*instance
	seen      map[string]bool
	effects   []func()
	dirty     bool

	base   context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	gctx   context.Context
	groups []*errgroup.Group
	closed bool
}

// instance is the hook storage for one component at one tree position.
type instance struct {
	slots   []any
	mounted map[int]bool
}

// NewRuntime creates a Runtime whose components see env through Ctx.Env.
// A nil env is replaced with an empty one.
func NewRuntime(env *vdom.Env, logger *slog.Logger) *Runtime {
	if env == nil {
		env = vdom.NewEnv()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	base, cancel := context.WithCancel(context.Background())
	return &Runtime{
		env:       env,
		logger:    logger,
		instances: make(map[string]*instance),
		base:      base,
		cancel:    cancel,
	}
}

// Env returns the dependency table shared by the tree.
func (rt *Runtime) Env() *vdom.Env {
	return rt.env
}

// beginPass marks the start of a render pass.
func (rt *Runtime) beginPass() {
	rt.mu.Lock()
	rt.seen = make(map[string]bool)
	rt.mu.Unlock()
}

// endPass drops instances that were not rendered in the finished pass so
// a component that leaves the tree starts fresh if it comes back.
func (rt *Runtime) endPass() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for key := range rt.instances {
		if !rt.seen[key] {
			delete(rt.instances, key)
			rt.logger.Debug("instance unmounted", "key", key)
		}
	}
	rt.seen = nil
}

// ctxFor returns the hook context for the instance at key.
func (rt *Runtime) ctxFor(key string) *hookCtx {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	inst, ok := rt.instances[key]
	if !ok {
		inst = &instance{mounted: make(map[int]bool)}
		rt.instances[key] = inst
	}
	if rt.seen != nil {
		rt.seen[key] = true
	}
	return &hookCtx{rt: rt, inst: inst}
}

// FlushEffects runs the effects queued by the last render pass, in the
// order they were registered. A panicking effect stops the flush and is
// returned as E010; the effects after it are dropped.
func (rt *Runtime) FlushEffects() error {
	rt.mu.Lock()
	effects := rt.effects
	rt.effects = nil
	rt.mu.Unlock()

	for _, fn := range effects {
		if err := runEffect(fn); err != nil {
			return err
		}
	}
	return nil
}

func runEffect(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New(errors.CodeRenderFailed).
				WithDetailf("effect panicked: %v", rec)
		}
	}()
	fn()
	return nil
}

// Dirty reports whether state changed since the last ClearDirty.
func (rt *Runtime) Dirty() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.dirty
}

// ClearDirty resets the dirty flag before a render pass.
func (rt *Runtime) ClearDirty() {
	rt.mu.Lock()
	rt.dirty = false
	rt.mu.Unlock()
}

// Pending reports whether tracked work was started since the last Wait.
func (rt *Runtime) Pending() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.group != nil
}

// goTracked starts fn in the current work group, opening a new group when
// the previous one has been handed to Wait.
func (rt *Runtime) goTracked(fn func(ctx context.Context) error) {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		rt.logger.Debug("tracked work dropped after close")
		return
	}
	if rt.group == nil {
		rt.group, rt.gctx = errgroup.WithContext(rt.base)
		rt.groups = append(rt.groups, rt.group)
	}
	g, ctx := rt.group, rt.gctx
	rt.mu.Unlock()

	g.Go(func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = errors.New(errors.CodeAsyncWorkFailed).
					WithDetailf("tracked work panicked: %v", rec)
			}
		}()
		return fn(ctx)
	})
}

// Wait blocks until the current work group finishes or ctx is done. Work
// started while waiting lands in a new group and is reported by Pending.
func (rt *Runtime) Wait(ctx context.Context) error {
	rt.mu.Lock()
	g := rt.group
	rt.group, rt.gctx = nil, nil
	rt.mu.Unlock()

	if g == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		rt.forget(g)
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (rt *Runtime) forget(g *errgroup.Group) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for i, other := range rt.groups {
		if other == g {
			rt.groups = append(rt.groups[:i], rt.groups[i+1:]...)
			return
		}
	}
}

// Close cancels the context handed to tracked work and waits for it to
// return. Work that ignores its context keeps Close blocked.
func (rt *Runtime) Close() {
	rt.mu.Lock()
	if rt.closed {
		rt.mu.Unlock()
		return
	}
	rt.closed = true
	groups := rt.groups
	rt.groups = nil
	rt.group, rt.gctx = nil, nil
	rt.instances = make(map[string]*instance)
	rt.effects = nil
	rt.mu.Unlock()

	rt.cancel()
	for _, g := range groups {
		_ = g.Wait()
	}
}

// hookCtx implements vdom.Ctx for one render of one instance.
type hookCtx struct {
	rt     *Runtime
	inst   *instance
	cursor int
}

func (c *hookCtx) State(initial any) (any, func(any)) {
	idx := c.cursor
	c.cursor++

	c.rt.mu.Lock()
	for len(c.inst.slots) <= idx {
		c.inst.slots = append(c.inst.slots, initial)
	}
	value := c.inst.slots[idx]
	c.rt.mu.Unlock()

	inst, rt := c.inst, c.rt
	return value, func(next any) {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		if idx < len(inst.slots) {
			inst.slots[idx] = next
		}
		rt.dirty = true
	}
}

func (c *hookCtx) Effect(fn func()) {
	idx := c.cursor
	c.cursor++

	c.rt.mu.Lock()
	defer c.rt.mu.Unlock()
	for len(c.inst.slots) <= idx {
		c.inst.slots = append(c.inst.slots, nil)
	}
	if c.inst.mounted[idx] {
		return
	}
	c.inst.mounted[idx] = true
	c.rt.effects = append(c.rt.effects, fn)
}

func (c *hookCtx) Go(fn func(ctx context.Context) error) {
	c.rt.goTracked(fn)
}

func (c *hookCtx) Env() *vdom.Env {
	return c.rt.env
}
