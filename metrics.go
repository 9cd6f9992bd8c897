package hecdss

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jpl-au/hecdss"

// Metric names.
const (
	MetricCalls    = "hecdss.engine.calls.total"
	MetricErrors   = "hecdss.engine.errors.total"
	MetricDuration = "hecdss.engine.call.duration.seconds"
)

// engineMetrics holds the RED instruments for engine calls.
type engineMetrics struct {
	calls    metric.Int64Counter
	errors   metric.Int64Counter
	duration metric.Float64Histogram
}

func newEngineMetrics(meter metric.Meter) (*engineMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(meterName)
	}

	calls, err := meter.Int64Counter(MetricCalls,
		metric.WithDescription("Engine calls made by sessions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Engine calls that reported an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(MetricDuration,
		metric.WithDescription("Engine call latency including the last-error query"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &engineMetrics{calls: calls, errors: errs, duration: duration}, nil
}

func (m *engineMetrics) record(op string, err error, d time.Duration) {
	ctx := context.Background()
	opAttr := attribute.String("op", op)

	m.calls.Add(ctx, 1, metric.WithAttributes(opAttr))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(opAttr))
	if err != nil {
		m.errors.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("group", GroupOf(err).String())))
	}
}
