package render

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/vango-dev/vspec/internal/errors"
	"github.com/vango-dev/vspec/pkg/vdom"
)

// Resolver maps a component reference to the component that should be
// rendered in its place. Implementations return the input unchanged when
// no replacement is registered.
type Resolver interface {
	Resolve(c *vdom.ComponentType) *vdom.ComponentType
}

// identity is the Resolver used when none is configured.
type identity struct{}

func (identity) Resolve(c *vdom.ComponentType) *vdom.ComponentType { return c }

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Resolver substitutes components at instantiation time.
	// Defaults to rendering every component as itself.
	Resolver Resolver

	// Runtime holds hook state across renders. When nil, the renderer
	// creates a private runtime, so state does not survive past Reset.
	Runtime *Runtime

	// Logger receives debug traces of HID assignment and component renders.
	Logger *slog.Logger
}

// Renderer converts VNode trees to HTML, instantiating components through
// the configured Resolver and Runtime. Elements with event handlers get a
// data-hid attribute; their handlers are collected for dispatch.
type Renderer struct {
	config     RendererConfig
	hidCounter uint32
	handlers   map[string]any
	logger     *slog.Logger
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Resolver == nil {
		config.Resolver = identity{}
	}
	if config.Runtime == nil {
		config.Runtime = NewRuntime(nil, config.Logger)
	}
	logger := config.Logger
	if logger == nil {
		logger = config.Runtime.logger
	}
	return &Renderer{
		config:   config,
		handlers: make(map[string]any),
		logger:   logger.With("component", "render"),
	}
}

// Runtime returns the hook runtime backing this renderer.
func (r *Renderer) Runtime() *Runtime {
	return r.config.Runtime
}

// RenderToString renders a VNode tree to an HTML string.
func (r *Renderer) RenderToString(node *vdom.VNode) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter renders a VNode tree to w as one render pass. HIDs and
// the handler registry restart from scratch on every pass.
func (r *Renderer) RenderToWriter(w io.Writer, node *vdom.VNode) error {
	r.Reset()
	r.config.Runtime.beginPass()
	err := r.renderNode(w, node, "0")
	r.config.Runtime.endPass()
	return err
}

// GetHandlers returns the handler registry collected during rendering.
// The map keys are in the format "hid_eventname" (e.g., "h1_onclick").
func (r *Renderer) GetHandlers() map[string]any {
	return r.handlers
}

// Reset clears the HID counter and handler registry.
func (r *Renderer) Reset() {
	r.hidCounter = 0
	r.handlers = make(map[string]any)
}

// renderNode dispatches rendering based on node kind. path identifies the
// node's position and keys component hook state.
func (r *Renderer) renderNode(w io.Writer, node *vdom.VNode, path string) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case vdom.KindElement:
		return r.renderElement(w, node, path)
	case vdom.KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case vdom.KindFragment:
		return r.renderChildren(w, node.Children, path)
	case vdom.KindComponent:
		return r.renderComponent(w, node, path)
	case vdom.KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	default:
		return errors.New(errors.CodeRenderFailed).WithDetailf("unknown node kind: %d", node.Kind)
	}
}

func (r *Renderer) renderChildren(w io.Writer, children []*vdom.VNode, path string) error {
	for i, child := range children {
		key := strconv.Itoa(i)
		if child != nil && child.Key != "" {
			key = "k:" + child.Key
		}
		if err := r.renderNode(w, child, path+"/"+key); err != nil {
			return err
		}
	}
	return nil
}

// renderElement renders an HTML element with its attributes and children.
func (r *Renderer) renderElement(w io.Writer, node *vdom.VNode, path string) error {
	tag := node.Tag

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttributes(w, node); err != nil {
		return err
	}

	if node.IsInteractive() {
		hid := r.nextHID()
		node.HID = hid
		r.logger.Debug("hid assigned", "hid", hid, "tag", tag)
		if _, err := fmt.Fprintf(w, ` data-hid="%s"`, hid); err != nil {
			return err
		}
		r.registerHandlers(hid, node)
	}

	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	if vdom.IsVoidElement(tag) {
		return nil
	}

	if rawHTML, ok := node.Props["dangerouslySetInnerHTML"].(string); ok {
		if _, err := io.WriteString(w, rawHTML); err != nil {
			return err
		}
	} else if err := r.renderChildren(w, node.Children, path); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "</%s>", tag)
	return err
}

// renderComponent resolves the component, renders it with the instance's
// hook context and renders the output in place.
func (r *Renderer) renderComponent(w io.Writer, node *vdom.VNode, path string) (err error) {
	comp := r.config.Resolver.Resolve(node.Type)
	if comp == nil {
		return nil
	}
	if comp != node.Type {
		r.logger.Debug("component substituted", "original", node.Type.String(), "replacement", comp.Name)
	}

	key := fmt.Sprintf("%s>%s@%p", path, comp.Name, comp)
	ctx := r.config.Runtime.ctxFor(key)

	var output *vdom.VNode
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				err = errors.New(errors.CodeRenderFailed).
					WithDetailf("component %s panicked: %v", comp.Name, rec)
			}
		}()
		output = comp.Render(ctx, node.Props)
	}()
	if err != nil {
		return err
	}

	r.logger.Debug("component rendered", "name", comp.Name, "key", key)
	return r.renderNode(w, output, key)
}

// renderAttributes renders all attributes for an element.
func (r *Renderer) renderAttributes(w io.Writer, node *vdom.VNode) error {
	if node.Props == nil {
		return nil
	}

	keys := node.Props.Keys()
	for _, key := range keys {
		value := node.Props[key]

		if strings.HasPrefix(key, "_") {
			continue
		}
		if strings.HasPrefix(key, "on") && isEventHandler(value) {
			continue
		}

		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		case "dangerouslySetInnerHTML", "key":
			continue
		}

		if isBooleanAttr(key) {
			if on, ok := value.(bool); ok {
				if on {
					if _, err := fmt.Fprintf(w, " %s", key); err != nil {
						return err
					}
				}
				continue
			}
		}

		if s := attrToString(value); s != "" {
			if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(s)); err != nil {
				return err
			}
		}
	}

	for _, key := range keys {
		if strings.HasPrefix(key, "on") && isEventHandler(node.Props[key]) {
			if _, err := fmt.Fprintf(w, ` data-on-%s="true"`, strings.ToLower(key[2:])); err != nil {
				return err
			}
		}
	}

	return nil
}

// nextHID generates the next sequential hydration ID.
func (r *Renderer) nextHID() string {
	r.hidCounter++
	return "h" + strconv.FormatUint(uint64(r.hidCounter), 10)
}

// registerHandlers stores handler references for the given HID.
func (r *Renderer) registerHandlers(hid string, node *vdom.VNode) {
	for key, value := range node.Props {
		if strings.HasPrefix(key, "on") && isEventHandler(value) {
			r.handlers[hid+"_"+key] = value
		}
	}
}

// HandlerKeys returns the registered handler keys sorted, for diagnostics.
func (r *Renderer) HandlerKeys() []string {
	keys := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isEventHandler returns true if the value looks like an event handler.
func isEventHandler(value any) bool {
	switch value.(type) {
	case nil:
		return false
	case func(), func(vdom.Event), func(any):
		return true
	default:
		return strings.HasPrefix(fmt.Sprintf("%T", value), "func")
	}
}

// attrToString converts an attribute value to a string.
func attrToString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// booleanAttrs are rendered as a bare name when true and omitted when false.
var booleanAttrs = map[string]bool{
	"autofocus":      true,
	"checked":        true,
	"default":        true,
	"disabled":       true,
	"formnovalidate": true,
	"hidden":         true,
	"multiple":       true,
	"novalidate":     true,
	"open":           true,
	"readonly":       true,
	"required":       true,
	"selected":       true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
