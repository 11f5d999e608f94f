// Package tracer provides distributed tracing abstractions for PGRest.
// It supports OpenTelemetry and allows custom tracer implementations.
package tracer

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer defines the tracing interface for PGRest.
// Implementations can provide OpenTelemetry, Jaeger, or custom tracing.
type Tracer interface {
	// StartSpan starts a new tracing span with the given name
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a tracing span that captures the execution of an operation.
type Span interface {
	// SetAttributes sets key-value attributes on the span
	SetAttributes(attrs ...attribute.KeyValue)
	// RecordError records an error that occurred during the span
	RecordError(err error)
	// SetStatus sets the status code and description of the span
	SetStatus(code codes.Code, description string)
	// End marks the span as complete
	End()
}

// NoopTracer is a tracer that does nothing (zero overhead when tracing is disabled).
// This is the default tracer used when no tracing is configured.
type NoopTracer struct{}

// StartSpan returns the context unchanged with a no-op span.
func (n *NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, &NoopSpan{}
}

// NoopSpan is a span that does nothing.
type NoopSpan struct{}

// SetAttributes does nothing.
func (n *NoopSpan) SetAttributes(_ ...attribute.KeyValue) {}

// RecordError does nothing.
func (n *NoopSpan) RecordError(_ error) {}

// SetStatus does nothing.
func (n *NoopSpan) SetStatus(_ codes.Code, _ string) {}

// End does nothing.
func (n *NoopSpan) End() {}

// OtelTracer wraps an OpenTelemetry tracer to implement the Tracer interface.
// This allows seamless integration with OpenTelemetry-based observability systems.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer creates a new OpenTelemetry tracer adapter.
// The provided tracer must not be nil.
func NewOtelTracer(tracer trace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: tracer}
}

// StartSpan starts a new OpenTelemetry span.
func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &OtelSpan{span: span}
}

// OtelSpan wraps an OpenTelemetry span.
type OtelSpan struct {
	span trace.Span
}

// SetAttributes sets OpenTelemetry attributes on the span.
func (s *OtelSpan) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// RecordError records an error on the OpenTelemetry span.
func (s *OtelSpan) RecordError(err error) {
	s.span.RecordError(err)
}

// SetStatus sets the status of the OpenTelemetry span.
func (s *OtelSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

// End completes the OpenTelemetry span.
func (s *OtelSpan) End() {
	s.span.End()
}

// RequestMetadata contains information about a gateway request for tracing
// purposes. It follows OpenTelemetry HTTP semantic conventions.
type RequestMetadata struct {
	// Method is the HTTP request method
	Method string
	// Host is the gateway host the request was sent to
	Host string
	// Path is the resource path, e.g. /users or /rpc/add_them
	Path string
	// Query is the rendered query string, already sanitized by the caller
	Query string
	// Operation is the logical operation (select, insert, update, upsert, delete, rpc)
	Operation string
	// Table is the target table or function name
	Table string
	// StatusCode is the HTTP response status, zero if the request never completed
	StatusCode int
	// Duration is how long the round trip took
	Duration time.Duration
	// Error is any error that occurred during execution
	Error error
}

// AddRequestAttributes adds HTTP semantic convention attributes to a span.
// See: https://opentelemetry.io/docs/specs/semconv/http/
func AddRequestAttributes(span Span, meta *RequestMetadata) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", meta.Method),
		attribute.String("url.path", meta.Path),
		attribute.String("pgrest.operation", meta.Operation),
		attribute.Float64("http.request.duration_ms", float64(meta.Duration.Microseconds())/1000.0),
	}

	if meta.Host != "" {
		attrs = append(attrs, attribute.String("server.address", meta.Host))
	}

	if meta.Query != "" {
		attrs = append(attrs, attribute.String("url.query", meta.Query))
	}

	if meta.Table != "" {
		attrs = append(attrs, attribute.String("pgrest.table", meta.Table))
	}

	if meta.StatusCode > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", meta.StatusCode))
	}

	span.SetAttributes(attrs...)

	if meta.Error != nil {
		span.RecordError(meta.Error)
		span.SetStatus(codes.Error, meta.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
}
