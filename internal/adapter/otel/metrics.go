package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "folio"

// Metrics holds the section metric instruments.
type Metrics struct {
	SectionsCreated metric.Int64Counter
	SectionsUpdated metric.Int64Counter
	SectionsDeleted metric.Int64Counter
	StoreFailures   metric.Int64Counter
	SaveDuration    metric.Float64Histogram
}

// NewMetrics creates all metric instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsFrom(otel.Meter(meterName))
}

// NewMetricsFrom creates all metric instruments on meter.
func NewMetricsFrom(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.SectionsCreated, err = meter.Int64Counter("folio.sections.created",
		metric.WithDescription("Number of sections created"))
	if err != nil {
		return nil, err
	}

	m.SectionsUpdated, err = meter.Int64Counter("folio.sections.updated",
		metric.WithDescription("Number of section saves"))
	if err != nil {
		return nil, err
	}

	m.SectionsDeleted, err = meter.Int64Counter("folio.sections.deleted",
		metric.WithDescription("Number of sections deleted"))
	if err != nil {
		return nil, err
	}

	m.StoreFailures, err = meter.Int64Counter("folio.store.failures",
		metric.WithDescription("Number of failed content store writes"))
	if err != nil {
		return nil, err
	}

	m.SaveDuration, err = meter.Float64Histogram("folio.section.save_duration_seconds",
		metric.WithDescription("Section write latency in seconds"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordWrite records the outcome of one section write. op is one of
// "create", "update" or "delete".
func (m *Metrics) RecordWrite(ctx context.Context, op, pageKey string, seconds float64, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("op", op), attribute.String("page_key", pageKey))
	m.SaveDuration.Record(ctx, seconds, attrs)
	if err != nil {
		m.StoreFailures.Add(ctx, 1, attrs)
		return
	}
	switch op {
	case "create":
		m.SectionsCreated.Add(ctx, 1, attrs)
	case "update":
		m.SectionsUpdated.Add(ctx, 1, attrs)
	case "delete":
		m.SectionsDeleted.Add(ctx, 1, attrs)
	}
}
