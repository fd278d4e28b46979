package secmem

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/embedded"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordingSpan struct {
	embedded.Span

	mu     sync.Mutex
	name   string
	ends   int
	errors int
	status otelcodes.Code
}

func (s *recordingSpan) End(...trace.SpanEndOption) {
	s.mu.Lock()
	s.ends++
	s.mu.Unlock()
}

func (s *recordingSpan) RecordError(error, ...trace.EventOption) {
	s.mu.Lock()
	s.errors++
	s.mu.Unlock()
}

func (s *recordingSpan) SetStatus(code otelcodes.Code, _ string) {
	s.mu.Lock()
	s.status = code
	s.mu.Unlock()
}

func (s *recordingSpan) AddEvent(string, ...trace.EventOption) {}
func (s *recordingSpan) AddLink(trace.Link) {}
func (s *recordingSpan) IsRecording() bool { return true }
func (s *recordingSpan) SpanContext() trace.SpanContext { return trace.SpanContext{} }
func (s *recordingSpan) SetName(string) {}
func (s *recordingSpan) SetAttributes(...attribute.KeyValue) {}
func (s *recordingSpan) TracerProvider() trace.TracerProvider { return noop.NewTracerProvider() }

type recordingTracer struct {
	embedded.Tracer

	mu    sync.Mutex
	spans []*recordingSpan
}

func (t *recordingTracer) Start(ctx context.Context, name string, _ ...trace.SpanStartOption) (context.Context, trace.Span) {
	span := &recordingSpan{name: name}
	t.mu.Lock()
	t.spans = append(t.spans, span)
	t.mu.Unlock()
	return ctx, span
}

func TestTracing_OneSpanPerLease(t *testing.T) {
	tracer := &recordingTracer{}
	p := New(Config{Tracer: tracer})
	defer p.Close()

	buf, err := p.Rent(context.Background(), 32)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}

	// Release on a different goroutine than the one that rented: the
	// span still belongs to the lease, not the goroutine.
	done := make(chan error, 1)
	go func() { done <- buf.Close() }()
	if err := <-done; err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tracer.spans))
	}
	span := tracer.spans[0]
	if span.name != "secmem.lease" {
		t.Fatalf("span name = %q", span.name)
	}
	if span.ends != 1 {
		t.Fatalf("span ended %d times, want 1", span.ends)
	}
	if span.errors != 0 {
		t.Fatalf("span recorded %d errors, want 0", span.errors)
	}

	// A duplicate release must not end the span again.
	if err := buf.Close(); err != nil {
		t.Fatalf("Close(2): %v", err)
	}
	if span.ends != 1 {
		t.Fatalf("span ended %d times after duplicate release, want 1", span.ends)
	}
}

func TestTracing_LateReleaseRecordsError(t *testing.T) {
	tracer := &recordingTracer{}
	p := New(Config{Tracer: tracer})

	buf, err := p.Rent(context.Background(), 64)
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := buf.Close(); err != nil {
		t.Fatalf("late Close: %v", err)
	}

	if len(tracer.spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(tracer.spans))
	}
	span := tracer.spans[0]
	if span.ends != 1 {
		t.Fatalf("span ended %d times, want 1", span.ends)
	}
	if span.errors != 1 {
		t.Fatalf("span recorded %d errors, want 1", span.errors)
	}
	if span.status != otelcodes.Error {
		t.Fatalf("span status = %v, want Error", span.status)
	}
}
