package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategorySelector  Category = "selector"
	CategoryRender    Category = "render"
	CategoryAssertion Category = "assertion"
	CategoryContext   Category = "context"
	CategoryAsync     Category = "async"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// Location represents a source code location.
type Location struct {
	File     string
	Line     int
	Column   int
	Function string
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// VspecError is a structured error with a code, source location and hints.
type VspecError struct {
	// Code is a unique error identifier (e.g., "E001").
	Code string

	// Category is the error type (selector, assertion, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the source location the failure is reported against.
	Location *Location

	// Context contains surrounding source code lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface. The detail is included unless it
// is the code's registered default.
func (e *VspecError) Error() string {
	msg := e.Message
	if e.Detail != "" && e.Detail != registry[e.Code].Detail {
		msg += ": " + e.Detail
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VspecError) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is a VspecError carrying the same code.
func (e *VspecError) Is(target error) bool {
	t, ok := target.(*VspecError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// WithLocation adds source location to the error.
func (e *VspecError) WithLocation(file string, line, column int) *VspecError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

// At sets the location without reading context lines.
func (e *VspecError) At(loc *Location) *VspecError {
	if loc != nil {
		e.Location = loc
	}
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VspecError) WithSuggestion(s string) *VspecError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VspecError) WithDetail(d string) *VspecError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *VspecError) WithDetailf(format string, args ...any) *VspecError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *VspecError) Wrap(err error) *VspecError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates a VspecError from a registered error code.
func New(code string) *VspecError {
	template, ok := registry[code]
	if !ok {
		return &VspecError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VspecError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new VspecError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *VspecError {
	return &VspecError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a VspecError.
func FromError(err error, code string) *VspecError {
	if err == nil {
		return nil
	}
	var ve *VspecError
	if stderrors.As(err, &ve) {
		return ve
	}
	return New(code).Wrap(err)
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &VspecError{Code: code})
}

// CodeOf returns the code of the first VspecError in err's chain, or "".
func CodeOf(err error) string {
	var ve *VspecError
	if stderrors.As(err, &ve) {
		return ve.Code
	}
	return ""
}
