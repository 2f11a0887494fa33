package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName 是天气服务内部 span 使用的 tracer 名称。
const TracerName = "github.com/kart-io/sentinel-weather"

// StartSpan starts a new span from the global tracer provider.
func StartSpan(ctx context.Context, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError marks the span in ctx as failed.
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddSpanEvent adds an event to the span in the context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// TraceIDFromContext extracts the trace ID, or "" when no trace is active.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// Attribute keys used by the weather pipeline.
const (
	AttrCity          = "weather.city"
	AttrProvenance    = "weather.provenance"
	AttrAdvisoryKind  = "advisory.kind"
	AttrAdvisorySrc   = "advisory.source"
	AttrSourceName    = "source.name"
	AttrFetchKind     = "source.fetch_error"
	AttrHistoryHours  = "weather.history_hours"
	AttrForecastSrc   = "forecast.source"
	AttrFallbackCause = "fallback.cause"
)
