package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "selector error",
			code:    CodeMisconfiguredSelector,
			wantMsg: "Misconfigured selector",
			wantCat: CategorySelector,
		},
		{
			name:    "context error",
			code:    CodeStaleContextMutation,
			wantMsg: "Stale context mutation",
			wantCat: CategoryContext,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestVspecError_Error(t *testing.T) {
	err := New(CodeElementNotFound)
	if got, want := err.Error(), "E002: Element not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New(CodeAsyncWorkFailed).Wrap(fmt.Errorf("boom"))
	if got, want := wrapped.Error(), "E007: Asynchronous work failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	plain := Newf(CategoryAssertion, "expected %s", "x")
	if plain.Error() != "expected x" {
		t.Errorf("Error() = %q", plain.Error())
	}

	detailed := New(CodeMisconfiguredSelector).WithDetail(`no selector named "nope"`)
	if got, want := detailed.Error(), `E001: Misconfigured selector: no selector named "nope"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if got := fmt.Sprintf("resolving: %v", detailed); !strings.Contains(got, `"nope"`) {
		t.Errorf("wrapped message lost the detail: %q", got)
	}
}

func TestColorToggleConcurrent(t *testing.T) {
	defer EnableColors()

	err := New(CodeAssertionFailure).WithDetail("x")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			DisableColors()
			EnableColors()
		}
	}()
	for i := 0; i < 100; i++ {
		_ = err.Format()
	}
	<-done

	DisableColors()
	if strings.Contains(err.Format(), "\x1b[") {
		t.Error("Format() should not color after DisableColors")
	}
}

func TestVspecError_Is(t *testing.T) {
	err := fmt.Errorf("resolving: %w", New(CodeMisconfiguredSelector).WithDetail("nope"))

	if !stderrors.Is(err, New(CodeMisconfiguredSelector)) {
		t.Error("errors.Is should match by code through wrapping")
	}
	if stderrors.Is(err, New(CodeElementNotFound)) {
		t.Error("errors.Is should not match a different code")
	}
	if !HasCode(err, CodeMisconfiguredSelector) {
		t.Error("HasCode should match")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, CodeRenderFailed) != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New(CodeWaitTimeout)
	if FromError(fmt.Errorf("ctx: %w", orig), CodeRenderFailed) != orig {
		t.Error("FromError should unwrap an existing VspecError")
	}

	base := fmt.Errorf("panic")
	ve := FromError(base, CodeRenderFailed)
	if ve.Code != CodeRenderFailed || !stderrors.Is(ve, base) {
		t.Errorf("FromError wrapped = %+v", ve)
	}
}

func TestVspecError_WithLocation(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "widget_test.go")
	content := "package widget\n\nfunc TestWidget(t *testing.T) {\n\tvtest.Describe(t, Widget, nil)\n}\n"
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New(CodeAssertionFailure).WithLocation(tmpFile, 4, 2)
	if err.Location.Line != 4 || err.Location.Column != 2 {
		t.Errorf("Location = %+v", err.Location)
	}
	if len(err.Context) == 0 {
		t.Error("Context should not be empty")
	}
}

func TestLocation_String(t *testing.T) {
	var nilLoc *Location
	if nilLoc.String() != "" {
		t.Error("nil location should format empty")
	}
	if got := (&Location{File: "a_test.go", Line: 3}).String(); got != "a_test.go:3" {
		t.Errorf("String() = %q", got)
	}
	if got := (&Location{File: "a_test.go", Line: 3, Column: 9}).String(); got != "a_test.go:3:9" {
		t.Errorf("String() = %q", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New(CodeElementNotFound).
		WithDetail("no element matches submit button").
		WithSuggestion("mount the component first").
		At(&Location{File: "form_test.go", Line: 12})

	out := err.Format()
	for _, want := range []string{"ERROR E002: Element not found", "form_test.go:12", "submit button", "Hint: mount"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("Format() should not contain ANSI codes when colors are disabled")
	}
}

func TestFormatCompact(t *testing.T) {
	err := New(CodeAssertionFailure).WithDetail("expected x").At(&Location{File: "x_test.go", Line: 7})
	if got, want := err.FormatCompact(), "x_test.go:7: E003: Assertion failed: expected x"; got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, fmt.Errorf("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestCallSite(t *testing.T) {
	loc := CallSite(0, "github.com/vango-dev/vspec/")
	if loc == nil {
		t.Fatal("expected a call site")
	}
	if !strings.HasSuffix(loc.File, "errors_test.go") {
		t.Errorf("File = %q, want errors_test.go", loc.File)
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 || codes[0] != CodeMisconfiguredSelector {
		t.Errorf("GetAllCodes() = %v", codes)
	}
	if _, ok := GetTemplate(CodeInvalidConfig); !ok {
		t.Error("E020 should be registered")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five", 9)
	if len(lines) != 3 || lines[0] != "one two" {
		t.Errorf("wrapText() = %q", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should wrap to nil")
	}
}
