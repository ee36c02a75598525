package vdom

import (
	"sort"
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Nested component instance
	KindRaw                    // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind          // Node type
	Tag      string         // Element tag name (e.g., "div")
	Props    Props          // Attributes and event handlers, or component props
	Children []*VNode       // Child nodes
	Key      string         // Reconciliation key
	Text     string         // For KindText and KindRaw
	Type     *ComponentType // For KindComponent
	HID      string         // Hydration ID (assigned during render)
}

// IsInteractive returns true if this node has event handlers and needs a HID.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if strings.HasPrefix(key, "on") {
			return true
		}
	}
	return false
}

// Props holds attributes and event handlers for elements, and the
// property set passed to a component.
type Props map[string]any

// Clone returns a shallow copy. A nil receiver yields an empty map.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a new Props with the entries of others applied over p in
// order; later maps win on conflicting keys.
func (p Props) Merge(others ...Props) Props {
	out := p.Clone()
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// String returns the value of key as a string, or "" if absent or not a string.
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Keys returns the sorted keys.
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "onsubmit", etc.
	Handler any    // func() or func(Event)
}

// Event is delivered to handlers of type func(Event).
type Event struct {
	// Type is the event name without the "on" prefix ("click", "submit").
	Type string

	// Target is the HID of the element the event was dispatched on.
	Target string

	// Data carries event payload supplied by the dispatcher.
	Data Props
}
