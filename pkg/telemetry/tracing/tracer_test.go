package tracing

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"dorfbook/simparse/pkg/config"
)

func newRecordingTracer() (*Tracer, *tracetest.SpanRecorder) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewWithProvider(provider), recorder
}

func TestNew_Disabled(t *testing.T) {
	tr, err := New(&config.TracingConfig{Enabled: false}, "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if tr.Enabled() {
		t.Error("disabled config produced an enabled tracer")
	}

	ctx, span := tr.Start(context.Background(), "noop")
	span.End()
	if TraceID(ctx) != "" {
		t.Error("noop span should not carry a valid trace id")
	}
	if err := tr.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() = %v", err)
	}
}

func TestNew_NilConfig(t *testing.T) {
	if _, err := New(nil, "test"); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestNew_BadSampler(t *testing.T) {
	_, err := New(&config.TracingConfig{Enabled: true, Sampler: "sometimes", Endpoint: "localhost:4317"}, "test")
	if err == nil {
		t.Error("expected sampler error")
	}
}

func TestCreateSampler(t *testing.T) {
	tests := []struct {
		strategy string
		ratio    float64
		wantErr  bool
	}{
		{SamplerAlways, 0, false},
		{SamplerNever, 0, false},
		{SamplerRatio, 0.5, false},
		{SamplerRatio, 1.5, true},
		{"bogus", 0, true},
	}
	for _, tt := range tests {
		_, err := createSampler(tt.strategy, tt.ratio)
		if (err != nil) != tt.wantErr {
			t.Errorf("createSampler(%q, %v) error = %v, wantErr %v", tt.strategy, tt.ratio, err, tt.wantErr)
		}
	}
}

func TestTracer_RecordsAttributes(t *testing.T) {
	tr, recorder := newRecordingTracer()

	ctx, span := tr.Start(context.Background(), "sim.parse")
	SetDocumentAttributes(span, "memory://rules", 42)
	SetResultAttributes(span, 3, 5)
	span.End()

	if TraceID(ctx) == "" {
		t.Error("expected a trace id in context")
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}

	attrs := map[string]any{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	if attrs["sim.source"] != "memory://rules" || attrs["sim.rules"] != int64(3) || attrs["sim.binds"] != int64(5) {
		t.Errorf("attributes = %v", attrs)
	}
}

func TestSetParseErrorAttributes(t *testing.T) {
	tr, recorder := newRecordingTracer()

	_, span := tr.Start(context.Background(), "sim.parse")
	SetParseErrorAttributes(span, errors.New("bad line"), "syntax", 7)
	span.End()

	s := recorder.Ended()[0]
	if s.Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", s.Status().Code)
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestPropagation_RoundTrip(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	tr, _ := newRecordingTracer()
	ctx, span := tr.Start(context.Background(), "client")
	defer span.End()

	headers := http.Header{}
	Inject(ctx, headers)
	if headers.Get("traceparent") == "" {
		t.Fatal("traceparent not injected")
	}

	extracted := Extract(context.Background(), headers)
	if TraceID(extracted) != TraceID(ctx) {
		t.Errorf("extracted trace id %q, want %q", TraceID(extracted), TraceID(ctx))
	}
}

func TestSetStatus(t *testing.T) {
	tr, recorder := newRecordingTracer()
	_, span := tr.Start(context.Background(), "ok")
	SetStatus(span, nil)
	span.End()

	if recorder.Ended()[0].Status().Code != codes.Ok {
		t.Error("expected Ok status")
	}
}
