// Package observability provides tracing and metrics instrumentation for
// the orchestration core: span helpers around the agentic loop, tool
// execution, step execution, and sub-agent spawning, plus Prometheus
// counters/histograms/gauges for the same attachment points.
package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Span names, named so external collectors can build dashboards and
// alerts against a stable set of identifiers.
const (
	SpanLoopIteration = "agentcore.loop.iteration"
	SpanToolExecute   = "agentcore.tool.execute"
	SpanStepDuration  = "agentcore.step.duration"
	SpanSubAgentDepth = "agentcore.subagent.depth"
)

// Attribute keys used across the spans above.
const (
	AttrSessionID    = "agentcore.session_id"
	AttrIteration    = "agentcore.iteration"
	AttrToolName     = "agentcore.tool_name"
	AttrToolCallID   = "agentcore.tool_call_id"
	AttrStepID       = "agentcore.step_id"
	AttrPersona      = "agentcore.persona"
	AttrSubAgentType = "agentcore.subagent_type"
	AttrDepth        = "agentcore.depth"
	AttrErrorType    = "agentcore.error_type"
)

// TracingConfig configures the Tracer. Unlike the teacher's tracer, this
// one never wires an OTLP or stdout span exporter — the dependency
// surface this module adopted from the retrieval pack carries the OTel
// SDK and API but not an exporter package, so spans are created,
// attributed, and ended against a provider with no registered span
// processor. A host process that wants spans shipped somewhere calls
// Provider() and registers its own span processor directly.
type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	SamplingRate float64
}

func (c *TracingConfig) SetDefaults() {
	if c.ServiceName == "" {
		c.ServiceName = "agentcore"
	}
	if c.SamplingRate == 0 {
		c.SamplingRate = 1.0
	}
}

// Tracer wraps an OpenTelemetry tracer with named span helpers for the
// orchestration core's fixed attachment points.
type Tracer struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// NewTracer builds a Tracer whose provider carries a resource and a
// trace-ID-ratio sampler but no span exporter. Spans are fully computed
// (attributes, events, status) and then discarded on End — useful for
// in-process span-based timing and for hosts that register their own
// processor later via Provider().
func NewTracer(cfg *TracingConfig) (*Tracer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	cfg.SetDefaults()

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SamplingRate)),
	)

	return &Tracer{provider: provider, tracer: provider.Tracer(cfg.ServiceName)}, nil
}

// Provider exposes the underlying TracerProvider so a host can register
// its own span processor (e.g. an OTLP exporter wired at the host layer,
// outside this module's dependency surface).
func (t *Tracer) Provider() *sdktrace.TracerProvider {
	if t == nil {
		return nil
	}
	return t.provider
}

func (t *Tracer) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, noopSpan()
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartLoopIteration begins a span for one turn of the agentic loop.
func (t *Tracer) StartLoopIteration(ctx context.Context, sessionID string, iteration int) (context.Context, trace.Span) {
	return t.start(ctx, SpanLoopIteration,
		attribute.String(AttrSessionID, sessionID),
		attribute.Int(AttrIteration, iteration),
	)
}

// StartToolExecution begins a span for a single tool call.
func (t *Tracer) StartToolExecution(ctx context.Context, toolName, callID string) (context.Context, trace.Span) {
	return t.start(ctx, SpanToolExecute,
		attribute.String(AttrToolName, toolName),
		attribute.String(AttrToolCallID, callID),
	)
}

// StartStepExecution begins a span for one plan step's run through the
// step executor.
func (t *Tracer) StartStepExecution(ctx context.Context, stepID, persona string) (context.Context, trace.Span) {
	return t.start(ctx, SpanStepDuration,
		attribute.String(AttrStepID, stepID),
		attribute.String(AttrPersona, persona),
	)
}

// StartSubAgentSpawn begins a span for a sub-agent's run, tagged with its
// depth in the spawn tree so nesting is visible in a trace view.
func (t *Tracer) StartSubAgentSpawn(ctx context.Context, subAgentType string, depth int) (context.Context, trace.Span) {
	return t.start(ctx, SpanSubAgentDepth,
		attribute.String(AttrSubAgentType, subAgentType),
		attribute.Int(AttrDepth, depth),
	)
}

// RecordError records an error on a span without ending it.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorType, errorType(err)))
}

// Shutdown flushes and releases the tracer provider. Since no exporter is
// registered by default, this is mostly a no-op that exists so hosts that
// did register one (via Provider()) get a clean shutdown path.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

func errorType(err error) string {
	return fmt.Sprintf("%T", err)
}

// noopSpan returns a no-op span for use when tracing is disabled.
func noopSpan() trace.Span {
	_, span := noop.NewTracerProvider().Tracer("noop").Start(context.Background(), "noop")
	return span
}
