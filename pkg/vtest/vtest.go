package vtest

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/vango-dev/vspec/internal/config"
	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/instrument"
	"github.com/vango-dev/vspec/pkg/selector"
	"github.com/vango-dev/vspec/pkg/spy"
	"github.com/vango-dev/vspec/pkg/substitute"
	"github.com/vango-dev/vspec/pkg/testctx"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// modulePrefix marks frames that are skipped when capturing the call site
// of a builder chain.
const modulePrefix = "github.com/vango-dev/vspec/"

// Option configures a Describe block.
type Option func(*options)

type options struct {
	configFile  string
	waitTimeout time.Duration
	logger      *slog.Logger
	selectors   *selector.Registry
	env         *vdom.Env
	observers   []instrument.Observer
}

// WithConfigFile loads configuration from path instead of discovering
// vspec.json or vspec.yaml from the working directory.
func WithConfigFile(path string) Option {
	return func(o *options) { o.configFile = path }
}

// WithWaitTimeout bounds waits for pending work, overriding waitTimeout
// from the configuration.
func WithWaitTimeout(d time.Duration) Option {
	return func(o *options) { o.waitTimeout = d }
}

// WithLogger sets the logger. The default is slog.Default(), or a debug
// text logger on stderr when the configuration enables debug.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithSelectors resolves selectors against reg instead of
// selector.Default.
func WithSelectors(reg *selector.Registry) Option {
	return func(o *options) { o.selectors = reg }
}

// WithEnv sets the dependency table components see. Spies and stubs are
// installed into it per test and removed afterwards.
func WithEnv(env *vdom.Env) Option {
	return func(o *options) { o.env = env }
}

// WithObserver reports cases and steps to obs. May be given more than once.
func WithObserver(obs instrument.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// run is the state shared by every block of one Describe call.
type run struct {
	r           runner
	comp        *vdom.ComponentType
	config      *config.Config
	waitTimeout time.Duration
	logger      *slog.Logger
	selectors   *selector.Registry
	env         *vdom.Env
	subs        *substitute.Registry
	observer    instrument.Observer

	// pending accumulates the current builder chain.
	pending *testctx.Context
	started bool
	current *Case
}

// Describe declares a suite for comp. define registers cases and setup on
// the Suite; once it returns, the cases run as subtests of a subtest named
// after the component, in the order they were declared.
//
// Example:
//
//	func TestGreeting(t *testing.T) {
//	    vtest.Describe(t, Greeting, func(s *vtest.Suite) {
//	        s.WithProps(vdom.Props{"firstName": "Jack"})
//
//	        s.It("greets by name", func(c *vtest.Case) {
//	            c.ExpectText("Hello, Jack!")
//	        })
//
//	        s.Expect().ToRender(selector.ElementWithClass("greeting")).AsTest()
//	    })
//	}
func Describe(t *testing.T, comp *vdom.ComponentType, define func(*Suite), opts ...Option) {
	t.Helper()
	describe(stdRunner{t}, comp, define, opts...)
}

func describe(r runner, comp *vdom.ComponentType, define func(*Suite), opts ...Option) {
	r.Helper()

	rn, err := newRun(r, comp, opts)
	if err != nil {
		r.Fatalf("%s", formatError(err))
		return
	}

	root := &Suite{name: comp.Name, run: rn}
	define(root)

	if rn.pending.State() == testctx.Accumulating {
		r.Fatalf("%s", formatError(errors.New(errors.CodeEmptyTest).
			WithDetail("an Expect() chain was started but never finished with AsTest()")))
		return
	}
	rn.started = true

	rn.logger.Debug("running suite", "cases", root.count())
	r.Run(comp.Name, root.runItems)
}

func newRun(r runner, comp *vdom.ComponentType, opts []Option) (*run, error) {
	if comp == nil {
		return nil, errors.New(errors.CodeRenderFailed).WithDetail("Describe needs a component")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if !cfg.ColorEnabled() {
		errors.DisableColors()
	}

	logger := o.logger
	if logger == nil {
		if cfg.Debug {
			logger = cfg.Logger(os.Stderr)
		} else {
			logger = slog.Default()
		}
	}

	waitTimeout := o.waitTimeout
	if waitTimeout <= 0 {
		waitTimeout = cfg.WaitTimeoutDuration()
	}

	selectors := o.selectors
	if selectors == nil {
		selectors = selector.Default
	}

	env := o.env
	if env == nil {
		env = vdom.NewEnv()
	}

	observers := append([]instrument.Observer(nil), o.observers...)
	if cfg.Metrics.Enabled {
		observers = append(observers, instrument.NewMetrics(instrument.WithNamespace(cfg.Metrics.Namespace)))
	}
	if cfg.Tracing.Enabled {
		observers = append(observers, instrument.NewTracer(instrument.WithTracerName(cfg.Tracing.TracerName)))
	}

	return &run{
		r:           r,
		comp:        comp,
		config:      cfg,
		waitTimeout: waitTimeout,
		logger:      logger.With("component", "vtest", "suite", comp.Name),
		selectors:   selectors,
		env:         env,
		subs:        substitute.NewRegistry(),
		observer:    instrument.Multi(observers...),
		pending:     testctx.New(),
	}, nil
}

// open reports whether definitions may still be registered. Once cases
// run, registering fails the running case, or panics outside one.
func (rn *run) open(op string) bool {
	if !rn.started {
		return true
	}
	err := errors.New(errors.CodeStaleContextMutation).
		WithDetailf("%s was called while the suite is running; declare it inside the Describe block", op)
	if rn.current != nil {
		rn.current.fail(err, true)
		return false
	}
	panic(err)
}

// Suite is a block of cases sharing setup. The root Suite is passed to
// the define function of Describe; nested blocks come from Group and
// WhenMounted.
type Suite struct {
	name     string
	parent   *Suite
	run      *run
	builder  *Builder
	setup    []func(*Case) error
	teardown []func(*Case)
	items    []item
}

// item is a case or a nested block.
type item struct {
	name  string
	body  func(*Case)
	plan  *testctx.Plan
	block *Suite
}

// It declares a case. body runs with a fresh container and context.
func (s *Suite) It(name string, body func(*Case)) {
	if !s.run.open("It") {
		return
	}
	s.items = append(s.items, item{name: name, body: body})
}

// Group declares a nested block. Its setup runs after the setup of the
// enclosing blocks and its teardown before theirs.
func (s *Suite) Group(name string, define func(*Suite)) {
	if !s.run.open("Group") {
		return
	}
	child := &Suite{name: name, parent: s, run: s.run}
	define(child)
	s.items = append(s.items, item{name: name, block: child})
}

// WhenMounted declares the nested block "when initially mounted".
func (s *Suite) WhenMounted(define func(*Suite)) {
	s.Group("when initially mounted", define)
}

// WithProps merges props into the mount props of every case in the block.
func (s *Suite) WithProps(props vdom.Props) {
	if !s.run.open("WithProps") {
		return
	}
	props = props.Clone()
	s.setup = append(s.setup, func(c *Case) error {
		return c.tc.MergeProps(props)
	})
}

// WithComponentSpy substitutes comp with a spy in every case of the
// block. The spy renders a marker element with id "spy-<Name>" and records
// the props of each instantiation; see Case.Spy.
func (s *Suite) WithComponentSpy(comp *vdom.ComponentType) {
	if !s.run.open("WithComponentSpy") {
		return
	}
	s.setup = append(s.setup, func(c *Case) error {
		if comp == nil {
			return errors.New(errors.CodeRenderFailed).WithDetail("WithComponentSpy needs a component")
		}
		sp := substitute.NewComponentSpy(comp, c.run.config.MarkerPrefix)
		sp.Install(c.run.subs)
		c.spies[comp] = sp
		c.logger.Debug("component spy installed", "original", comp.Name, "marker", sp.MarkerID())
		return nil
	})
}

// WithSpy installs a recording spy returning nil under name in the
// environment of every case in the block.
func (s *Suite) WithSpy(name string) {
	if !s.run.open("WithSpy") {
		return
	}
	s.setup = append(s.setup, func(c *Case) error {
		c.install(spy.New(name))
		return nil
	})
}

// WithStub installs a recording stub under name in the environment of
// every case in the block. A func(...any) any or vdom.Func result is
// called with the arguments; any other value is returned as is.
func (s *Suite) WithStub(name string, result any) {
	if !s.run.open("WithStub") {
		return
	}
	s.setup = append(s.setup, func(c *Case) error {
		switch fn := result.(type) {
		case vdom.Func:
			c.install(spy.StubFunc(name, fn))
		case func(...any) any:
			c.install(spy.StubFunc(name, fn))
		default:
			c.install(spy.Stub(name, result))
		}
		return nil
	})
}

// BeforeEach runs fn before every case of the block, after the setup
// declared before it.
func (s *Suite) BeforeEach(fn func(*Case)) {
	if !s.run.open("BeforeEach") {
		return
	}
	s.setup = append(s.setup, func(c *Case) error {
		fn(c)
		return nil
	})
}

// AfterEach runs fn after every case of the block.
func (s *Suite) AfterEach(fn func(*Case)) {
	if !s.run.open("AfterEach") {
		return
	}
	s.teardown = append(s.teardown, fn)
}

// Expect returns the suite's expectation builder.
func (s *Suite) Expect() *Builder {
	if s.builder == nil {
		s.builder = &Builder{suite: s}
	}
	return s.builder
}

// chain returns the blocks from the root down to s.
func (s *Suite) chain() []*Suite {
	var out []*Suite
	for b := s; b != nil; b = b.parent {
		out = append([]*Suite{b}, out...)
	}
	return out
}

func (s *Suite) count() int {
	n := 0
	for _, it := range s.items {
		if it.block != nil {
			n += it.block.count()
		} else {
			n++
		}
	}
	return n
}

func (s *Suite) runItems(r runner) {
	for _, it := range s.items {
		it := it
		if it.block != nil {
			r.Run(it.name, it.block.runItems)
			continue
		}
		r.Run(it.name, func(r runner) { s.runCase(r, it) })
	}
}

// runCase runs one case: setup of every enclosing block parent first,
// the body or plan, then teardown child first. The container is removed,
// substitutions are cleared and the environment restored even when the
// case fails.
func (s *Suite) runCase(r runner, it item) {
	r.Helper()
	c := s.run.newCase(r, it.name)
	defer c.finish()

	chain := s.chain()
	defer func() {
		for i := len(chain) - 1; i >= 0; i-- {
			for _, fn := range chain[i].teardown {
				fn(c)
			}
		}
	}()

	for _, b := range chain {
		for _, fn := range b.setup {
			if err := fn(c); err != nil {
				c.fail(err, true)
			}
		}
	}
	if it.plan != nil {
		if err := c.tc.MergeProps(it.plan.Props); err != nil {
			c.fail(err, true)
		}
	}
	c.tc.Finalize()

	if it.plan != nil {
		c.runPlan(*it.plan)
		return
	}
	it.body(c)
}

// formatError renders err for test output.
func formatError(err error) string {
	var ve *errors.VspecError
	if stderrors.As(err, &ve) {
		return ve.Format()
	}
	return err.Error()
}

// newCase prepares the per-case state.
func (rn *run) newCase(r runner, name string) *Case {
	rn.env.Snapshot()
	c := &Case{
		r:      r,
		run:    rn,
		tc:     testctx.New(),
		spies:  make(map[*vdom.ComponentType]*substitute.ComponentSpy),
		funcs:  make(map[string]*spy.Func),
		logger: rn.logger.With("case", name),
	}
	c.ctx, c.end = rn.observer.StartCase(context.Background(), rn.comp.Name, name)
	c.container = newContainer(rn, c.logger)
	c.h = harness{c}
	rn.current = c
	return c
}
