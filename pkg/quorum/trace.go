package quorum

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "quorum"

const spanNameRun = "quorum.Run"

const (
	attrStrategy  = "quorum.strategy"
	attrBackends  = "quorum.backends"
	attrResults   = "quorum.results"
	attrThreshold = "quorum.threshold"
	attrValid     = "quorum.valid"
)

// WithTracerProvider attaches a tracer provider an Executor's Run spans are
// recorded against. Without this option the global otel tracer provider is
// used (a no-op tracer until the process installs one).
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Executor) { e.tracer = newTracer(tp) }
}

// WithMeterProvider attaches a meter provider Run outcomes are recorded
// against. Without this option, Run records no metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Executor) {
		m, err := newMetrics(mp)
		if err == nil {
			e.metrics = m
		}
	}
}

// oteltracer wraps a trace.Tracer so Run's instrumentation reads as a
// handful of named calls instead of raw otel API calls inline.
type oteltracer struct {
	tracer trace.Tracer
}

func newTracer(tp trace.TracerProvider) oteltracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return oteltracer{tracer: tp.Tracer(tracerName)}
}

type runSpan struct {
	span trace.Span
}

func (t oteltracer) start(ctx context.Context, name string, strategy Strategy, n int) (context.Context, runSpan) {
	ctx, span := t.tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String(attrStrategy, strategy.String()),
			attribute.Int(attrBackends, n),
		),
	)
	return ctx, runSpan{span: span}
}

func (s runSpan) record(results, threshold int, valid bool, elapsed time.Duration) {
	s.span.SetAttributes(
		attribute.Int(attrResults, results),
		attribute.Int(attrThreshold, threshold),
		attribute.Bool(attrValid, valid),
	)
	if valid {
		s.span.SetStatus(codes.Ok, "")
	} else {
		s.span.SetStatus(codes.Error, "quorum not reached")
	}
	_ = elapsed
}

func (s runSpan) end() {
	s.span.End()
}

// Metrics records Run outcomes. A nil *Metrics records nothing, so every
// method is nil-receiver safe.
type Metrics struct {
	meter       metric.Meter
	runTotal    metric.Int64Counter
	runDuration metric.Float64Histogram
}

var durationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}

func newMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		return nil, nil
	}
	m := &Metrics{meter: mp.Meter(tracerName)}
	var err error
	if m.runTotal, err = m.meter.Int64Counter("quorum.run.total",
		metric.WithDescription("fan-out/collect attempts"), metric.WithUnit("{run}")); err != nil {
		return nil, err
	}
	if m.runDuration, err = m.meter.Float64Histogram("quorum.run.duration",
		metric.WithDescription("fan-out/collect attempt duration"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordRun records one Run attempt's outcome.
func (m *Metrics) RecordRun(ctx context.Context, strategy string, valid bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	metricsCtx := context.WithoutCancel(ctx)
	attrs := metric.WithAttributes(
		attribute.String(attrStrategy, strategy),
		attribute.Bool(attrValid, valid),
	)
	m.runTotal.Add(metricsCtx, 1, attrs)
	m.runDuration.Record(metricsCtx, elapsed.Seconds(), attrs)
}
