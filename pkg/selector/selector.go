package selector

import (
	"fmt"
	"strings"
)

// Names of the built-in selectors.
const (
	NameButton           = "button"
	NameSubmitButton     = "submitButton"
	NameFormWithID       = "formWithId"
	NameElement          = "element"
	NameElementWithID    = "elementWithId"
	NameElementWithClass = "elementWithClass"
)

// Default holds the built-in selectors. Suites resolve against it unless
// given their own registry.
var Default = NewDefaultRegistry()

// NewDefaultRegistry returns a registry holding the built-in selectors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(
		Spec{
			Name: NameButton,
			Template: func(id string) string {
				if id == "" {
					return "button"
				}
				return "button" + attr("id", "=", id)
			},
			Describe: func(id string) string {
				if id == "" {
					return "button"
				}
				return fmt.Sprintf("button with id '%s'", id)
			},
		},
		Spec{
			Name:     NameSubmitButton,
			Template: func(string) string { return `input[type="submit"], button[type="submit"]` },
			Describe: func(string) string { return "submit button" },
		},
		Spec{
			Name:     NameFormWithID,
			Template: func(id string) string { return "form" + attr("id", "=", id) },
			Describe: func(id string) string { return fmt.Sprintf("form with id '%s'", id) },
		},
		Spec{
			Name:     NameElement,
			Template: func(css string) string { return css },
			Describe: func(css string) string { return fmt.Sprintf("element matching '%s'", css) },
		},
		Spec{
			Name:     NameElementWithID,
			Template: func(id string) string { return attr("id", "=", id) },
			Describe: func(id string) string { return fmt.Sprintf("element with id '%s'", id) },
		},
		Spec{
			Name:     NameElementWithClass,
			Template: func(class string) string { return attr("class", "~=", class) },
			Describe: func(class string) string { return fmt.Sprintf("element with class '%s'", class) },
		},
	)
	return r
}

// PropertyFilter narrows a selector to elements whose property Name has
// Value. The "disabled" property is treated as a boolean attribute.
type PropertyFilter struct {
	Name  string
	Value string
}

// Selector is a bound selector: a registered name plus its parameter and
// optional property filter. It is resolved lazily against a registry, so
// it can be created before anything is mounted.
type Selector struct {
	name   string
	param  string
	filter *PropertyFilter
}

// New binds name to param. Resolution happens later; an unknown name is
// reported when the selector is first resolved.
func New(name, param string) Selector {
	return Selector{name: name, param: param}
}

// Button selects the first button, or the button with the given id.
func Button(id ...string) Selector {
	if len(id) > 0 {
		return New(NameButton, id[0])
	}
	return New(NameButton, "")
}

// SubmitButton selects the first submit input or button.
func SubmitButton() Selector { return New(NameSubmitButton, "") }

// FormWithID selects the form with the given id.
func FormWithID(id string) Selector { return New(NameFormWithID, id) }

// Element selects the first element matching a raw CSS query.
func Element(css string) Selector { return New(NameElement, css) }

// ElementWithID selects the element with the given id.
func ElementWithID(id string) Selector { return New(NameElementWithID, id) }

// ElementWithClass selects the first element carrying class.
func ElementWithClass(class string) Selector { return New(NameElementWithClass, class) }

// Name returns the registered selector name.
func (s Selector) Name() string { return s.name }

// Param returns the bound parameter.
func (s Selector) Param() string { return s.param }

// Filter returns the property filter, or nil.
func (s Selector) Filter() *PropertyFilter { return s.filter }

// WithPropertyValue returns a copy of s narrowed to elements whose prop
// equals value. The filter applies to both the query and the description.
func (s Selector) WithPropertyValue(prop, value string) Selector {
	s.filter = &PropertyFilter{Name: prop, Value: value}
	return s
}

// Disabled narrows s to disabled elements.
func Disabled(s Selector) Selector { return s.WithPropertyValue("disabled", "true") }

// Enabled narrows s to enabled elements.
func Enabled(s Selector) Selector { return s.WithPropertyValue("disabled", "false") }

// Resolve builds the query and description of s from reg.
func (s Selector) Resolve(reg *Registry) (Resolved, error) {
	if reg == nil {
		reg = Default
	}
	res, err := reg.Resolve(s.name, s.param)
	if err != nil {
		return Resolved{}, err
	}
	if s.filter != nil {
		res.Query = narrow(res.Query, s.filter.query())
		res.Description = s.filter.describe(res.Description)
	}
	return res, nil
}

// Describe returns the description of s, or a phrase naming the
// misconfiguration when s cannot be resolved.
func (s Selector) Describe(reg *Registry) string {
	res, err := s.Resolve(reg)
	if err != nil {
		return fmt.Sprintf("<misconfigured selector %q>", s.name)
	}
	return res.Description
}

// String implements fmt.Stringer for logs.
func (s Selector) String() string {
	out := s.name + "(" + s.param + ")"
	if s.filter != nil {
		out += fmt.Sprintf("[%s=%s]", s.filter.Name, s.filter.Value)
	}
	return out
}

func (f *PropertyFilter) query() string {
	if f.Name == "disabled" {
		switch f.Value {
		case "true":
			return "[disabled]"
		case "false":
			return ":not([disabled])"
		}
	}
	return attr(f.Name, "=", f.Value)
}

func (f *PropertyFilter) describe(base string) string {
	if f.Name == "disabled" {
		switch f.Value {
		case "true":
			return "a disabled " + base
		case "false":
			return "an enabled " + base
		}
	}
	return fmt.Sprintf("%s with %s '%s'", base, f.Name, f.Value)
}

// attr builds an attribute selector with value quoted as a CSS string, so
// ids and classes containing dots, colons or quotes match literally.
func attr(name, op, value string) string {
	return "[" + name + op + `"` + cssEscaper.Replace(value) + `"]`
}

var cssEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\a `)

// narrow appends suffix to every selector in a comma-separated group.
func narrow(query, suffix string) string {
	parts := splitGroup(query)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p) + suffix
	}
	return strings.Join(parts, ", ")
}

// splitGroup splits a selector group on top-level commas, leaving commas
// inside brackets, parentheses and quotes alone.
func splitGroup(query string) []string {
	var (
		parts   []string
		depth   int
		quote   rune
		escaped bool
		start   int
	)
	for i, r := range query {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(':
			depth++
		case r == ']' || r == ')':
			depth--
		case r == ',' && depth == 0:
			parts = append(parts, query[start:i])
			start = i + 1
		}
	}
	return append(parts, query[start:])
}
