package instrument

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/vspec/internal/errors"
)

func runCase(obs Observer, fail error) {
	ctx, endCase := obs.StartCase(context.Background(), "MyComponent", "renders the title")
	_, endAct := obs.StartStep(ctx, "click", "clicking button")
	endAct(nil)
	_, endAssert := obs.StartStep(ctx, KindAssert, "renders element with id 'bold'")
	endAssert(fail)
	endCase(fail)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithConstLabels(prometheus.Labels{"env": "test"}))

	runCase(m, nil)
	runCase(m, errors.New(errors.CodeAssertionFailure))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.cases.WithLabelValues("MyComponent", "pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cases.WithLabelValues("MyComponent", "fail")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.actions.WithLabelValues("click", "pass")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assertions.WithLabelValues("fail")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("E003")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
		for _, metric := range f.GetMetric() {
			var labels []string
			for _, l := range metric.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			assert.Contains(t, labels, "env=test")
		}
	}
	assert.Contains(t, names, "vspec_cases_total")
	assert.Contains(t, names, "vspec_case_duration_seconds")
}

func TestMetricsReuseRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics(WithRegistry(reg), WithNamespace("app"))
	second := NewMetrics(WithRegistry(reg), WithNamespace("app"))

	runCase(first, nil)
	runCase(second, nil)
	assert.Equal(t, 2.0, testutil.ToFloat64(second.cases.WithLabelValues("MyComponent", "pass")))
}

func TestTracer(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	tr := NewTracer(WithTracerProvider(tp), WithTracerName("test"))

	runCase(tr, errors.New(errors.CodeAssertionFailure).WithDetail("expected element"))

	spans := rec.Ended()
	require.Len(t, spans, 3)

	act, check, root := spans[0], spans[1], spans[2]
	assert.Equal(t, "renders the title", root.Name())
	assert.Equal(t, "vspec.click", act.Name())
	assert.Equal(t, root.SpanContext().SpanID(), act.Parent().SpanID())
	assert.Equal(t, codes.Ok, act.Status().Code)
	assert.Equal(t, codes.Error, check.Status().Code)
	assert.Contains(t, check.Attributes(), attribute.String("vspec.error_code", "E003"))
	assert.Contains(t, root.Attributes(), attribute.String("vspec.suite", "MyComponent"))
	assert.Len(t, check.Events(), 1)
}

type recorder struct {
	name   string
	events *[]string
}

func (r recorder) StartCase(ctx context.Context, _, name string) (context.Context, func(error)) {
	*r.events = append(*r.events, r.name+" start "+name)
	return ctx, func(error) { *r.events = append(*r.events, r.name+" end "+name) }
}

func (r recorder) StartStep(ctx context.Context, kind, _ string) (context.Context, func(error)) {
	return ctx, func(err error) { *r.events = append(*r.events, r.name+" "+kind+" "+status(err)) }
}

func TestMulti(t *testing.T) {
	var events []string
	obs := Multi(recorder{"a", &events}, nil, recorder{"b", &events})

	ctx, end := obs.StartCase(context.Background(), "s", "c")
	_, endStep := obs.StartStep(ctx, KindAssert, "x")
	endStep(stderrors.New("boom"))
	end(nil)

	assert.Equal(t, []string{
		"a start c", "b start c",
		"b assert fail", "a assert fail",
		"b end c", "a end c",
	}, events)
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "E006", errorCode(errors.New(errors.CodeWaitTimeout)))
	assert.Equal(t, "unknown", errorCode(stderrors.New("plain")))
	assert.Equal(t, "pass", status(nil))
}

func TestNop(t *testing.T) {
	ctx, end := Nop{}.StartCase(context.Background(), "s", "c")
	require.NotNil(t, ctx)
	end(nil)
}
