package instrument

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "vspec"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "vspec").
	TracerName string

	// Provider supplies the tracer. Defaults to the global provider.
	Provider trace.TracerProvider
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) { c.TracerName = name }
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) { c.Provider = tp }
}

// Tracer is an Observer that opens a span per case with a child span per
// step. Failed steps record the error and set an error status.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer.
func NewTracer(opts ...TracerOption) *Tracer {
	config := TracerConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &Tracer{tracer: config.Provider.Tracer(config.TracerName)}
}

func (t *Tracer) StartCase(ctx context.Context, suite, name string) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("vspec.suite", suite),
			attribute.String("vspec.case", name),
		),
	)
	return ctx, endSpan(span)
}

func (t *Tracer) StartStep(ctx context.Context, kind, description string) (context.Context, func(error)) {
	ctx, span := t.tracer.Start(ctx, "vspec."+kind,
		trace.WithAttributes(
			attribute.String("vspec.step.kind", kind),
			attribute.String("vspec.step.description", description),
		),
	)
	return ctx, endSpan(span)
}

func endSpan(span trace.Span) func(error) {
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("vspec.error_code", errorCode(err)))
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
