package otel

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/siteclone/internal/domain"
)

const instrumentationName = "github.com/neomorfeo/siteclone/internal/adapter/otel"

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TracingCatalog wraps a domain.TenantCatalog with OpenTelemetry tracing.
type TracingCatalog struct {
	next   domain.TenantCatalog
	tracer trace.Tracer
}

// Compile-time check: TracingCatalog implements domain.TenantCatalog.
var _ domain.TenantCatalog = (*TracingCatalog)(nil)

// NewTracingCatalog creates a tracing decorator around the given catalog.
func NewTracingCatalog(next domain.TenantCatalog) *TracingCatalog {
	return &TracingCatalog{
		next:   next,
		tracer: otel.Tracer(instrumentationName),
	}
}

func (c *TracingCatalog) List(ctx context.Context) ([]domain.TenantSummary, error) {
	ctx, span := c.tracer.Start(ctx, "TenantCatalog.List")
	defer span.End()

	summaries, err := c.next.List(ctx)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	eligible := 0
	for _, s := range summaries {
		if s.Eligible {
			eligible++
		}
	}
	span.SetAttributes(
		attribute.Int("result.count", len(summaries)),
		attribute.Int("result.eligible", eligible),
	)
	return summaries, nil
}

func (c *TracingCatalog) IsEligible(ctx context.Context, tenantID string) (bool, error) {
	ctx, span := c.tracer.Start(ctx, "TenantCatalog.IsEligible",
		trace.WithAttributes(attribute.String("tenant.id", tenantID)),
	)
	defer span.End()

	ok, err := c.next.IsEligible(ctx, tenantID)
	if err != nil {
		recordError(span, err)
		return false, err
	}
	span.SetAttributes(attribute.Bool("tenant.eligible", ok))
	return ok, nil
}

// TracingEngine wraps a domain.DuplicationEngine with a span per run and a
// duplication counter labelled by outcome.
type TracingEngine struct {
	next    domain.DuplicationEngine
	tracer  trace.Tracer
	counter metric.Int64Counter
}

// Compile-time check: TracingEngine implements domain.DuplicationEngine.
var _ domain.DuplicationEngine = (*TracingEngine)(nil)

// NewTracingEngine creates a tracing decorator around the given engine.
func NewTracingEngine(next domain.DuplicationEngine) (*TracingEngine, error) {
	counter, err := otel.Meter(instrumentationName).Int64Counter("siteclone.duplications",
		metric.WithDescription("Number of duplication engine runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, err
	}
	return &TracingEngine{
		next:    next,
		tracer:  otel.Tracer(instrumentationName),
		counter: counter,
	}, nil
}

func (e *TracingEngine) Duplicate(ctx context.Context, req domain.DuplicationRequest, transcript *slog.Logger) (string, error) {
	ctx, span := e.tracer.Start(ctx, "DuplicationEngine.Duplicate",
		trace.WithAttributes(
			attribute.String("source.id", req.SourceTenantID),
			attribute.String("tenant.domain", req.NewDomain),
			attribute.String("tenant.path", req.NewPath),
			attribute.Bool("duplicate.copy_files", req.CopyFiles),
			attribute.Bool("duplicate.keep_users", req.KeepUserAssociations),
		),
	)
	defer span.End()

	id, err := e.next.Duplicate(ctx, req, transcript)
	outcome := "success"
	if err != nil {
		outcome = "failure"
		recordError(span, err)
	} else {
		span.SetAttributes(attribute.String("tenant.id", id))
	}
	e.counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	return id, err
}

// TracingPublisher wraps a domain.EventPublisher with OpenTelemetry tracing.
type TracingPublisher struct {
	next   domain.EventPublisher
	tracer trace.Tracer
}

// Compile-time check: TracingPublisher implements domain.EventPublisher.
var _ domain.EventPublisher = (*TracingPublisher)(nil)

// NewTracingPublisher creates a tracing decorator around the given publisher.
func NewTracingPublisher(next domain.EventPublisher) *TracingPublisher {
	return &TracingPublisher{
		next:   next,
		tracer: otel.Tracer(instrumentationName),
	}
}

func (p *TracingPublisher) Publish(ctx context.Context, event domain.Event, tenant domain.Tenant) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.Publish",
		trace.WithAttributes(
			attribute.String("event.type", string(event)),
			attribute.String("tenant.id", tenant.ID),
			attribute.String("tenant.address", tenant.Address()),
		),
	)
	defer span.End()

	err := p.next.Publish(ctx, event, tenant)
	if err != nil {
		recordError(span, err)
	}
	return err
}
