package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/fatih/color"
)

// colorDisabled turns ANSI colors off. Suites running in parallel may
// toggle it while others format.
var colorDisabled atomic.Bool

// DisableColors disables ANSI color output.
func DisableColors() {
	colorDisabled.Store(true)
}

// EnableColors enables ANSI color output.
func EnableColors() {
	colorDisabled.Store(false)
}

// paint renders text with the given attributes if colors are enabled.
// Colors are forced on when enabled so output captured by go test keeps them.
func paint(text string, attrs ...color.Attribute) string {
	c := color.New(attrs...)
	if !colorDisabled.Load() {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(text)
}

func red(text string) string  { return paint(text, color.FgRed) }
func cyan(text string) string { return paint(text, color.FgCyan) }
func gray(text string) string { return paint(text, color.FgHiBlack) }
func bold(text string) string { return paint(text, color.Bold) }

// Format returns a formatted, multi-line error message for terminal display.
func (e *VspecError) Format() string {
	var b strings.Builder

	if e.Code != "" {
		b.WriteString(paint("ERROR "+e.Code+": ", color.FgRed, color.Bold))
	} else {
		b.WriteString(paint("ERROR: ", color.FgRed, color.Bold))
	}
	b.WriteString(bold(e.Message))
	b.WriteString("\n")

	if e.Location != nil {
		b.WriteString("\n  ")
		b.WriteString(cyan(e.Location.String()))
		b.WriteString("\n")

		if len(e.Context) > 0 {
			b.WriteString("\n")
			startLine := e.Location.Line - len(e.Context)/2
			for i, line := range e.Context {
				lineNum := startLine + i
				marker := "    "
				if lineNum == e.Location.Line {
					marker = "  " + red("→ ")
				}
				b.WriteString(marker)
				b.WriteString(fmt.Sprintf("%4d", lineNum))
				b.WriteString(gray(" │ "))
				b.WriteString(line)
				b.WriteString("\n")
			}
		}
	}

	if e.Detail != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(e.Detail, "\n") {
			for _, wrapped := range wrapText(line, 78) {
				b.WriteString("  ")
				b.WriteString(wrapped)
				b.WriteString("\n")
			}
		}
	}

	if e.Wrapped != nil {
		b.WriteString("\n  ")
		b.WriteString(gray("Caused by: "))
		b.WriteString(e.Wrapped.Error())
		b.WriteString("\n")
	}

	if e.Suggestion != "" {
		b.WriteString("\n  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n")
	}

	return b.String()
}

// FormatCompact returns a compact single-line error format.
func (e *VspecError) FormatCompact() string {
	var b strings.Builder

	if e.Location != nil {
		b.WriteString(e.Location.String())
		b.WriteString(": ")
	}
	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	return b.String()
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder

	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// Fprint writes a formatted error to w. Non-VspecErrors get a plain header.
func Fprint(w io.Writer, err error) {
	var ve *VspecError
	if stderrors.As(err, &ve) {
		fmt.Fprint(w, ve.Format())
		return
	}
	fmt.Fprintf(w, "%s %s\n", paint("ERROR:", color.FgRed, color.Bold), err.Error())
}
