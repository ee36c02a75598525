package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vspec/internal/errors"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"fluent", false},
		{"fixture", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "fixture, fluent")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, tmpl.Name)
			assert.NotEmpty(t, tmpl.Description)
		})
	}
}

func TestList(t *testing.T) {
	assert.Equal(t, []string{"fixture", "fluent"}, List())
}

func TestDefaultConfig(t *testing.T) {
	tests := []struct {
		dir  string
		want string
	}{
		{"widgets", "widgets"},
		{"my-app", "myapp"},
		{"2fa", "app2fa"},
		{"Web_UI", "web_ui"},
	}
	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			cfg := DefaultConfig(filepath.Join(t.TempDir(), tt.dir))
			assert.Equal(t, tt.want, cfg.Package)
			assert.Equal(t, "Component", cfg.Component)
		})
	}
}

func TestCreate(t *testing.T) {
	for _, name := range List() {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tmpl, err := Get(name)
			require.NoError(t, err)

			written, err := tmpl.Create(dir, Config{Package: "widgets", Component: "Signup"}, false)
			require.NoError(t, err)
			require.Equal(t, []string{filepath.Join(dir, "signup_vspec_test.go")}, written)

			data, err := os.ReadFile(written[0])
			require.NoError(t, err)
			src := string(data)
			assert.True(t, strings.HasPrefix(src, "package widgets\n"))
			assert.Contains(t, src, "func TestSignup(t *testing.T)")
			assert.Contains(t, src, `vdom.Define("Signup"`)
			assert.NotContains(t, src, "{{")
		})
	}
}

func TestCreateExisting(t *testing.T) {
	dir := t.TempDir()
	tmpl, err := Get("fluent")
	require.NoError(t, err)
	cfg := Config{Package: "widgets", Component: "Signup"}

	_, err = tmpl.Create(dir, cfg, false)
	require.NoError(t, err)

	_, err = tmpl.Create(dir, cfg, false)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigExists))

	written, err := tmpl.Create(dir, cfg, true)
	require.NoError(t, err)
	assert.Len(t, written, 1)
}

func TestCreateNeedsNames(t *testing.T) {
	tmpl, err := Get("fixture")
	require.NoError(t, err)
	_, err = tmpl.Create(t.TempDir(), Config{Package: "widgets"}, false)
	assert.Error(t, err)
}
