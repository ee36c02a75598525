package instrument

import (
	"context"

	"github.com/vango-dev/vspec/internal/errors"
)

// Step kinds reported for assertions. Actions report their own kind
// ("render", "submit", "click", "wait").
const KindAssert = "assert"

// Observer is notified as a suite runs. Start methods return the context
// for nested work and a function to call with the outcome.
type Observer interface {
	StartCase(ctx context.Context, suite, name string) (context.Context, func(err error))
	StartStep(ctx context.Context, kind, description string) (context.Context, func(err error))
}

// Nop is an Observer that does nothing.
type Nop struct{}

func (Nop) StartCase(ctx context.Context, _, _ string) (context.Context, func(error)) {
	return ctx, func(error) {}
}

func (Nop) StartStep(ctx context.Context, _, _ string) (context.Context, func(error)) {
	return ctx, func(error) {}
}

// Multi fans events out to every observer in order. Nil entries are
// skipped.
func Multi(observers ...Observer) Observer {
	out := make(multi, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return Nop{}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

type multi []Observer

func (m multi) StartCase(ctx context.Context, suite, name string) (context.Context, func(error)) {
	ends := make([]func(error), len(m))
	for i, o := range m {
		ctx, ends[i] = o.StartCase(ctx, suite, name)
	}
	return ctx, fanIn(ends)
}

func (m multi) StartStep(ctx context.Context, kind, description string) (context.Context, func(error)) {
	ends := make([]func(error), len(m))
	for i, o := range m {
		ctx, ends[i] = o.StartStep(ctx, kind, description)
	}
	return ctx, fanIn(ends)
}

// fanIn ends in reverse start order, so spans close innermost first.
func fanIn(ends []func(error)) func(error) {
	return func(err error) {
		for i := len(ends) - 1; i >= 0; i-- {
			ends[i](err)
		}
	}
}

// status maps an outcome to a low-cardinality label value.
func status(err error) string {
	if err == nil {
		return "pass"
	}
	return "fail"
}

// errorCode returns the vspec error code of err, or "unknown" for errors
// that did not come from vspec.
func errorCode(err error) string {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return "unknown"
}
