package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("wato-stats/internal/interfaces/httpapi")
var noopSpan = trace.SpanFromContext(context.Background())

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		// Untraced routes like /healthz and /metrics have no parent span.
		return ctx, noopSpan
	}
	if !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(nonEmptyAttrs(attrs)...))
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

// nonEmptyAttrs drops string attributes whose value is blank so optional
// query parameters do not show up as empty tags.
func nonEmptyAttrs(attrs []attribute.KeyValue) []attribute.KeyValue {
	out := attrs[:0:0]
	for _, attr := range attrs {
		if attr.Value.Type() == attribute.STRING && strings.TrimSpace(attr.Value.AsString()) == "" {
			continue
		}
		out = append(out, attr)
	}
	return out
}
