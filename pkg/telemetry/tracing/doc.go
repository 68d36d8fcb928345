// Package tracing provides OpenTelemetry tracing for the simparse service.
//
// New exports spans over OTLP gRPC when telemetry.tracing.enabled is set
// and otherwise returns a no-op Tracer, so callers always create spans:
//
//	ctx, span := tracer.Start(ctx, "sim.parse")
//	defer span.End()
//	tracing.SetDocumentAttributes(span, source, len(body))
//
// Samplers: "always", "never", or "ratio" with sample_ratio, each wrapped
// in ParentBased.
package tracing
