package templates

import (
	"bytes"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/vango-dev/vspec/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// Package is the Go package the suite is written into.
	Package string

	// Component is the Go identifier of the component under test.
	Component string
}

// Template is an example suite.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files maps relative paths to file contents. Paths are templates too.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"fluent":  fluentTemplate(),
	"fixture": fixtureTemplate(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.Newf(errors.CategoryCLI, "template %q not found", name).
			WithDetail("available templates: " + strings.Join(List(), ", "))
	}
	return tmpl, nil
}

// List returns the available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfig derives a config from the directory the suite is written
// into: the package is the directory name, the component is "Component".
func DefaultConfig(dir string) Config {
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	return Config{Package: packageName(filepath.Base(abs)), Component: "Component"}
}

// Create writes the template's files into dir. Existing files are left
// alone unless force is set; the written paths are returned.
func (t *Template) Create(dir string, cfg Config, force bool) ([]string, error) {
	if cfg.Package == "" || cfg.Component == "" {
		return nil, errors.Newf(errors.CategoryCLI, "template %s needs a package and a component name", t.Name)
	}

	paths := make([]string, 0, len(t.Files))
	for relPath := range t.Files {
		paths = append(paths, relPath)
	}
	sort.Strings(paths)

	var written []string
	for _, relPath := range paths {
		name, err := execute("path", relPath, cfg)
		if err != nil {
			return written, err
		}
		body, err := execute(relPath, t.Files[relPath], cfg)
		if err != nil {
			return written, err
		}
		if src, err := format.Source(body); err == nil {
			body = src
		}

		fullPath := filepath.Join(dir, string(name))
		if _, err := os.Stat(fullPath); err == nil && !force {
			return written, errors.New(errors.CodeConfigExists).
				WithDetail(fullPath + " already exists").
				WithSuggestion("Pass --force to overwrite it")
		}
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return written, err
		}
		if err := os.WriteFile(fullPath, body, 0644); err != nil {
			return written, err
		}
		written = append(written, fullPath)
	}
	return written, nil
}

func execute(name, text string, cfg Config) ([]byte, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"lower": strings.ToLower,
	}).Parse(text)
	if err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "invalid template %s: %v", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, cfg); err != nil {
		return nil, errors.Newf(errors.CategoryCLI, "template execute error %s: %v", name, err)
	}
	return buf.Bytes(), nil
}

// packageName turns a directory name into a valid package name.
func packageName(dir string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(dir) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		return "app" + name
	}
	return name
}

// fluentTemplate returns a suite written with the builder.
func fluentTemplate() *Template {
	return &Template{
		Name:        "fluent",
		Description: "A suite declared with Expect() chains",
		Files: map[string]string{
			"{{lower .Component}}_vspec_test.go": `package {{.Package}}

import (
	"testing"

	"github.com/vango-dev/vspec/pkg/selector"
	"github.com/vango-dev/vspec/pkg/vdom"
	"github.com/vango-dev/vspec/pkg/vtest"
)

// Replace with your component.
var {{.Component}} = vdom.Define("{{.Component}}", func(ctx vdom.Ctx, p vdom.Props) *vdom.VNode {
	submitted, setSubmitted := vdom.UseState(ctx, false)
	return vdom.Div(
		vdom.Form(
			vdom.ID("signup"),
			vdom.OnSubmit(func() { setSubmitted(true) }),
			vdom.Input(vdom.Type("submit"), vdom.DisabledIf(submitted)),
		),
		vdom.If(submitted, vdom.P(vdom.Class("thanks"), "Thanks")),
	)
})

func Test{{.Component}}(t *testing.T) {
	vtest.Describe(t, {{.Component}}, func(s *vtest.Suite) {
		s.Expect().ToRender(selector.FormWithID("signup")).AsTest()
		s.Expect().ToNotRender(selector.ElementWithClass("thanks")).AsTest()
		s.Expect().
			WhenSubmitting(selector.FormWithID("signup")).
			ToRender(selector.Disabled(selector.SubmitButton())).
			ToRender(selector.ElementWithClass("thanks")).
			AsTest()
	})
}
`,
		},
	}
}

// fixtureTemplate returns a suite written with It blocks.
func fixtureTemplate() *Template {
	return &Template{
		Name:        "fixture",
		Description: "A suite written as It blocks with a spy",
		Files: map[string]string{
			"{{lower .Component}}_vspec_test.go": `package {{.Package}}

import (
	"testing"

	"github.com/vango-dev/vspec/pkg/selector"
	"github.com/vango-dev/vspec/pkg/vdom"
	"github.com/vango-dev/vspec/pkg/vtest"
)

// Replace with your component.
var {{.Component}} = vdom.Define("{{.Component}}", func(ctx vdom.Ctx, _ vdom.Props) *vdom.VNode {
	return vdom.Button(vdom.OnClick(func() { ctx.Env().Call("alert", "clicked") }), "Click me")
})

func Test{{.Component}}(t *testing.T) {
	vtest.Describe(t, {{.Component}}, func(s *vtest.Suite) {
		s.WithSpy("alert")

		s.WhenMounted(func(s *vtest.Suite) {
			s.It("renders a button", func(c *vtest.Case) {
				c.ExpectRender(selector.Button())
				c.ExpectText("Click me")
			})

			s.It("alerts when clicked", func(c *vtest.Case) {
				c.Click(selector.Button())
				c.ExpectCalledWith("alert", "clicked")
			})
		})
	})
}
`,
		},
	}
}
