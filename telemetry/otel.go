package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type (
	// OTelTracer delegates to an OpenTelemetry tracer obtained from the
	// global TracerProvider. Configure the provider (via
	// otel.SetTracerProvider or OTEL_EXPORTER_OTLP_ENDPOINT-driven SDK
	// setup) before invoking agentcore operations.
	OTelTracer struct {
		tracer trace.Tracer
	}

	// OTelMetrics delegates to an OpenTelemetry meter obtained from the
	// global MeterProvider.
	OTelMetrics struct {
		meter    metric.Meter
		counters map[string]metric.Float64Counter
		gauges   map[string]metric.Float64Gauge
		hist     map[string]metric.Float64Histogram
	}

	otelSpan struct {
		span trace.Span
	}
)

// NewOTelTracer constructs a Tracer backed by the global OpenTelemetry
// TracerProvider, scoped to the agentcore instrumentation name.
func NewOTelTracer() Tracer {
	return &OTelTracer{tracer: otel.Tracer("github.com/agentcore/agentcore")}
}

// NewOTelMetrics constructs a Metrics recorder backed by the global
// OpenTelemetry MeterProvider.
func NewOTelMetrics() Metrics {
	return &OTelMetrics{
		meter:    otel.Meter("github.com/agentcore/agentcore"),
		counters: map[string]metric.Float64Counter{},
		gauges:   map[string]metric.Float64Gauge{},
		hist:     map[string]metric.Float64Histogram{},
	}
}

// Start opens a new span named name under the OTel tracer.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name, opts...)
	return ctx, otelSpan{span: span}
}

func (s otelSpan) End(opts ...trace.SpanEndOption) { s.span.End(opts...) }

func (s otelSpan) AddEvent(name string, keyvals ...any) {
	s.span.AddEvent(name, trace.WithAttributes(attrsFromKeyvals(keyvals)...))
}

func (s otelSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

func (s otelSpan) RecordError(err error, opts ...trace.EventOption) {
	s.span.RecordError(err, opts...)
}

func attrsFromKeyvals(keyvals []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, attribute.String(key, fmt.Sprint(keyvals[i+1])))
	}
	return attrs
}

func (m *OTelMetrics) IncCounter(name string, value float64, tags ...string) {
	c, ok := m.counters[name]
	if !ok {
		var err error
		c, err = m.meter.Float64Counter(name)
		if err != nil {
			return
		}
		m.counters[name] = c
	}
	c.Add(context.Background(), value, metric.WithAttributes(attrsFromTags(tags)...))
}

func (m *OTelMetrics) RecordGauge(name string, value float64, tags ...string) {
	g, ok := m.gauges[name]
	if !ok {
		var err error
		g, err = m.meter.Float64Gauge(name)
		if err != nil {
			return
		}
		m.gauges[name] = g
	}
	g.Record(context.Background(), value, metric.WithAttributes(attrsFromTags(tags)...))
}

func (m *OTelMetrics) RecordTimer(name string, d time.Duration, tags ...string) {
	h, ok := m.hist[name]
	if !ok {
		var err error
		h, err = m.meter.Float64Histogram(name, metric.WithUnit("ms"))
		if err != nil {
			return
		}
		m.hist[name] = h
	}
	h.Record(context.Background(), float64(d.Milliseconds()), metric.WithAttributes(attrsFromTags(tags)...))
}

func attrsFromTags(tags []string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(tags))
	for _, t := range tags {
		attrs = append(attrs, attribute.String("tag", t))
	}
	return attrs
}
