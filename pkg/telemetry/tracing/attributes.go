package tracing

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for parse spans.
const (
	AttrSource      = attribute.Key("sim.source")
	AttrBytes       = attribute.Key("sim.document.bytes")
	AttrRules       = attribute.Key("sim.rules")
	AttrBinds       = attribute.Key("sim.binds")
	AttrFormat      = attribute.Key("sim.format")
	AttrErrorLine   = attribute.Key("sim.error.line")
	AttrErrorType   = attribute.Key("sim.error.type")
	AttrRequestID   = attribute.Key("request.id")
	AttrLibraryFile = attribute.Key("sim.library.files")
)

// SetDocumentAttributes describes the input of a parse span.
func SetDocumentAttributes(span trace.Span, source string, size int) {
	span.SetAttributes(AttrSource.String(source), AttrBytes.Int(size))
}

// SetResultAttributes describes a successful parse.
func SetResultAttributes(span trace.Span, rules, binds int) {
	span.SetAttributes(AttrRules.Int(rules), AttrBinds.Int(binds))
}

// SetParseErrorAttributes describes a failed parse and marks the span as an error.
func SetParseErrorAttributes(span trace.Span, err error, errType string, line int) {
	span.SetAttributes(AttrErrorType.String(errType))
	if line > 0 {
		span.SetAttributes(AttrErrorLine.Int(line))
	}
	SetError(span, err)
}
