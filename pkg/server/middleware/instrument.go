package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"dorfbook/simparse/pkg/telemetry/logging"
	"dorfbook/simparse/pkg/telemetry/tracing"
)

// HTTPMetrics receives one observation per request.
type HTTPMetrics interface {
	RecordHTTPRequest(route, method string, status int, duration time.Duration)
}

// Instrument wraps a single route: it continues any incoming trace, opens a
// server span named after route and records the request in metrics.
// Either tracer or metrics may be nil.
func Instrument(route string, tracer *tracing.Tracer, metrics HTTPMetrics) func(http.Handler) http.Handler {
	if tracer == nil {
		tracer = tracing.Noop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := tracing.Extract(r.Context(), r.Header)

			ctx, span := tracer.Start(ctx, "HTTP "+route,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPMethod(r.Method),
					semconv.HTTPRoute(route),
				),
			)
			defer span.End()

			if id := logging.GetRequestID(ctx); id != "" {
				span.SetAttributes(tracing.AttrRequestID.String(id))
			}

			rw := WrapResponseWriter(w)
			next.ServeHTTP(rw, r.WithContext(ctx))

			status := rw.StatusCode()
			span.SetAttributes(semconv.HTTPStatusCode(status))
			if status >= 500 {
				span.SetStatus(codes.Error, http.StatusText(status))
			}

			if metrics != nil {
				metrics.RecordHTTPRequest(route, r.Method, status, time.Since(start))
			}
		})
	}
}
