package dom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/google/uuid"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/render"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// containerAttr marks the wrapper element of a container's document.
const containerAttr = "data-vspec-container"

// maxCommitPasses bounds the render/effect loop of a single commit.
const maxCommitPasses = 50

// Options configures a Container.
type Options struct {
	// Tag is the wrapper element tag. Defaults to "div".
	Tag string

	// Resolver substitutes components during rendering.
	Resolver render.Resolver

	// Env is the dependency table components see through Ctx.Env.
	Env *vdom.Env

	Logger *slog.Logger
}

// Container is the mount target of one test. It owns the renderer and
// hook runtime of the mounted tree and a parsed document of the last
// render, which queries run against.
type Container struct {
	id       string
	tag      string
	runtime  *render.Runtime
	renderer *render.Renderer
	logger   *slog.Logger

	root    *vdom.VNode
	doc     *goquery.Document
	removed bool
}

// New creates an empty, unmounted container.
func New(opts Options) *Container {
	if opts.Tag == "" {
		opts.Tag = "div"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	id := uuid.NewString()
	logger = logger.With("container", id)

	rt := render.NewRuntime(opts.Env, logger)
	c := &Container{
		id:      id,
		tag:     opts.Tag,
		runtime: rt,
		renderer: render.NewRenderer(render.RendererConfig{
			Resolver: opts.Resolver,
			Runtime:  rt,
			Logger:   logger,
		}),
		logger: logger,
	}
	c.doc = c.parse("")
	return c
}

// ID returns the container's unique id.
func (c *Container) ID() string { return c.id }

// Env returns the dependency table of the mounted tree.
func (c *Container) Env() *vdom.Env { return c.runtime.Env() }

// Mounted reports whether a tree has been mounted.
func (c *Container) Mounted() bool { return c.root != nil }

// Mount renders root into the container, runs mount effects and
// re-renders until state settles. Mounting again replaces the tree while
// keeping the state of instances at unchanged positions.
func (c *Container) Mount(root *vdom.VNode) error {
	if c.removed {
		return errors.New(errors.CodeRenderFailed).WithDetail("container was removed")
	}
	c.root = root
	c.logger.Debug("mount")
	return c.commit()
}

// commit renders the current root, flushes effects and repeats while
// effects or handlers left state dirty.
func (c *Container) commit() error {
	for i := 0; i < maxCommitPasses; i++ {
		c.runtime.ClearDirty()
		html, err := c.renderer.RenderToString(c.root)
		if err != nil {
			return err
		}
		c.doc = c.parse(html)
		if err := c.runtime.FlushEffects(); err != nil {
			return err
		}
		if !c.runtime.Dirty() {
			return nil
		}
	}
	return errors.New(errors.CodeRenderFailed).
		WithDetailf("state did not settle after %d render passes", maxCommitPasses)
}

func (c *Container) parse(body string) *goquery.Document {
	markup := fmt.Sprintf(`<%s %s="%s">%s</%s>`, c.tag, containerAttr, c.id, body, c.tag)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// The HTML parser only fails on reader errors.
		panic(err)
	}
	return doc
}

// Selection returns the wrapper element.
func (c *Container) Selection() *goquery.Selection {
	return c.doc.Find("[" + containerAttr + "]").First()
}

// Query returns the first element matching css inside the container, or
// an empty selection. A query that does not parse is reported as E001.
func (c *Container) Query(css string) (*goquery.Selection, error) {
	all, err := c.QueryAll(css)
	if err != nil {
		return nil, err
	}
	return all.First(), nil
}

// QueryAll returns every element matching css inside the container.
func (c *Container) QueryAll(css string) (*goquery.Selection, error) {
	m, err := cascadia.Compile(css)
	if err != nil {
		return nil, errors.New(errors.CodeMisconfiguredSelector).
			WithDetailf("query %q does not parse", css).
			Wrap(err)
	}
	return c.Selection().FindMatcher(m), nil
}

// Text returns the text content of the container.
func (c *Container) Text() string {
	return c.Selection().Text()
}

// HTML returns the inner HTML of the container.
func (c *Container) HTML() string {
	html, err := c.Selection().Html()
	if err != nil {
		return ""
	}
	return html
}

// Simulate dispatches event on the first element of sel. The event
// bubbles: the nearest element, starting at the target, that handles it
// receives it. State changes are committed before Simulate returns.
func (c *Container) Simulate(sel *goquery.Selection, event string, data vdom.Props) error {
	target := sel.First()
	if target.Length() == 0 {
		return errors.New(errors.CodeElementNotFound).
			WithDetailf("cannot dispatch %q on an empty selection", event)
	}

	targetHID, _ := target.Attr("data-hid")
	handlers := c.renderer.GetHandlers()

	for node := target; node.Length() > 0; node = node.Parent() {
		if _, ok := node.Attr(containerAttr); ok {
			break
		}
		hid, ok := node.Attr("data-hid")
		if !ok {
			continue
		}
		handler, ok := handlers[hid+"_on"+event]
		if !ok {
			continue
		}

		c.logger.Debug("dispatch", "event", event, "target", targetHID, "handler", hid)
		if err := invoke(handler, vdom.Event{Type: event, Target: targetHID, Data: data}); err != nil {
			return err
		}
		return c.commit()
	}

	return errors.New(errors.CodeHandlerNotFound).
		WithDetailf("no %q handler on <%s> or its ancestors", event, goquery.NodeName(target))
}

func invoke(handler any, ev vdom.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.New(errors.CodeRenderFailed).
				WithDetailf("%s handler panicked: %v", ev.Type, rec)
		}
	}()

	switch h := handler.(type) {
	case func():
		h()
	case func(vdom.Event):
		h(ev)
	case func(any):
		h(ev)
	default:
		return errors.New(errors.CodeHandlerNotFound).
			WithDetailf("unsupported handler type %T", handler)
	}
	return nil
}

// Wait blocks until every piece of tracked work has finished, committing
// the state it produced, and repeats while the re-render starts more.
// The deadline of ctx bounds the whole wait (E006); a failing task
// aborts it (E007).
func (c *Container) Wait(ctx context.Context) error {
	for {
		pending := c.runtime.Pending()
		if pending {
			if err := c.runtime.Wait(ctx); err != nil {
				if ctx.Err() != nil {
					return errors.New(errors.CodeWaitTimeout).Wrap(err)
				}
				if errors.CodeOf(err) != "" {
					return err
				}
				return errors.New(errors.CodeAsyncWorkFailed).Wrap(err)
			}
		}
		if !pending && !c.runtime.Dirty() {
			return nil
		}
		if err := c.commit(); err != nil {
			return err
		}
	}
}

// Remove detaches the container: tracked work is cancelled and awaited,
// and later mounts fail.
func (c *Container) Remove() {
	if c.removed {
		return
	}
	c.removed = true
	c.runtime.Close()
	c.root = nil
	c.doc = c.parse("")
	c.logger.Debug("removed")
}
