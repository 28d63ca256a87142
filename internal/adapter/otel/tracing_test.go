package otel_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	adapter "github.com/neomorfeo/siteclone/internal/adapter/otel"
	"github.com/neomorfeo/siteclone/internal/domain"
)

// --- Test providers ---

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return exporter
}

func setupTestMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return reader
}

// --- Fakes ---

type stubCatalog struct {
	summaries []domain.TenantSummary
	err       error
}

func (c *stubCatalog) List(_ context.Context) ([]domain.TenantSummary, error) {
	return c.summaries, c.err
}

func (c *stubCatalog) IsEligible(_ context.Context, id string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	for _, s := range c.summaries {
		if s.ID == id {
			return s.Eligible, nil
		}
	}
	return false, domain.ErrTenantNotFound
}

type stubEngine struct {
	id  string
	err error
}

func (e *stubEngine) Duplicate(_ context.Context, _ domain.DuplicationRequest, _ *slog.Logger) (string, error) {
	return e.id, e.err
}

type stubPublisher struct {
	err   error
	count int
}

func (p *stubPublisher) Publish(_ context.Context, _ domain.Event, _ domain.Tenant) error {
	p.count++
	return p.err
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// --- Tests ---

func TestTracingCatalog_List_RecordsCounts(t *testing.T) {
	exporter := setupTestTracer(t)
	c := adapter.NewTracingCatalog(&stubCatalog{summaries: []domain.TenantSummary{
		{ID: "1", Eligible: true},
		{ID: "2", Eligible: false},
	}})

	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d summaries, want 2", len(got))
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "TenantCatalog.List" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "TenantCatalog.List")
	}
	assertAttribute(t, spans[0], "result.count", "2")
	assertAttribute(t, spans[0], "result.eligible", "1")
}

func TestTracingCatalog_IsEligible_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	c := adapter.NewTracingCatalog(&stubCatalog{})

	_, err := c.IsEligible(context.Background(), "missing")
	if !errors.Is(err, domain.ErrTenantNotFound) {
		t.Fatalf("expected ErrTenantNotFound, got %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected error event on span")
	}
	assertAttribute(t, spans[0], "tenant.id", "missing")
}

func TestTracingEngine_Duplicate_RecordsSpanAndCount(t *testing.T) {
	exporter := setupTestTracer(t)
	reader := setupTestMeter(t)

	e, err := adapter.NewTracingEngine(&stubEngine{id: "42"})
	if err != nil {
		t.Fatalf("NewTracingEngine: %v", err)
	}

	req := domain.DuplicationRequest{SourceTenantID: "2", NewDomain: "example.com", NewPath: "/demo/", CopyFiles: true}
	id, err := e.Duplicate(context.Background(), req, discard)
	if err != nil || id != "42" {
		t.Fatalf("Duplicate = (%q, %v), want (42, nil)", id, err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	assertAttribute(t, spans[0], "source.id", "2")
	assertAttribute(t, spans[0], "tenant.path", "/demo/")
	assertAttribute(t, spans[0], "duplicate.copy_files", "true")
	assertAttribute(t, spans[0], "tenant.id", "42")

	if got := counterValue(t, reader, "success"); got != 1 {
		t.Errorf("success count = %d, want 1", got)
	}
}

func TestTracingEngine_Duplicate_RecordsFailure(t *testing.T) {
	exporter := setupTestTracer(t)
	reader := setupTestMeter(t)

	e, err := adapter.NewTracingEngine(&stubEngine{err: errors.New("copy failed")})
	if err != nil {
		t.Fatalf("NewTracingEngine: %v", err)
	}

	if _, err := e.Duplicate(context.Background(), domain.DuplicationRequest{}, discard); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 || spans[0].Status.Code != codes.Error {
		t.Fatalf("expected one error span, got %+v", spans)
	}
	if got := counterValue(t, reader, "failure"); got != 1 {
		t.Errorf("failure count = %d, want 1", got)
	}
}

func TestTracingPublisher_Publish_RecordsSpan(t *testing.T) {
	exporter := setupTestTracer(t)
	inner := &stubPublisher{}
	pub := adapter.NewTracingPublisher(inner)

	tenant := domain.NewTenant("t-1", "Demo", "example.com", "/demo/", "a@b.com")
	if err := pub.Publish(context.Background(), domain.EventProvisionComplete, tenant); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Name != "EventPublisher.Publish" {
		t.Errorf("span name = %q, want %q", spans[0].Name, "EventPublisher.Publish")
	}
	assertAttribute(t, spans[0], "event.type", "provision_complete")
	assertAttribute(t, spans[0], "tenant.address", "example.com/demo/")

	if inner.count != 1 {
		t.Errorf("inner publishes = %d, want 1", inner.count)
	}
}

func TestTracingPublisher_Publish_RecordsError(t *testing.T) {
	exporter := setupTestTracer(t)
	pub := adapter.NewTracingPublisher(&stubPublisher{err: errors.New("publish failed")})

	tenant := domain.NewTenant("t-1", "Demo", "example.com", "/demo/", "a@b.com")
	if err := pub.Publish(context.Background(), domain.EventProvisionComplete, tenant); err == nil {
		t.Fatal("expected error")
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("span status = %v, want %v", spans[0].Status.Code, codes.Error)
	}
}

// counterValue returns the duplication counter value for the given outcome.
func counterValue(t *testing.T, reader *sdkmetric.ManualReader, outcome string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collecting metrics: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "siteclone.duplications" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value(attribute.Key("outcome")); ok && v.AsString() == outcome {
					return dp.Value
				}
			}
		}
	}
	return 0
}

// assertAttribute checks that a span has an attribute with the given key and string value.
func assertAttribute(t *testing.T, span tracetest.SpanStub, key, want string) {
	t.Helper()
	for _, attr := range span.Attributes {
		if string(attr.Key) == key {
			got := attr.Value.Emit()
			if got != want {
				t.Errorf("attribute %q = %q, want %q", key, got, want)
			}
			return
		}
	}
	t.Errorf("attribute %q not found on span %q", key, span.Name)
}
