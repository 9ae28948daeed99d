package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"licensegate/internal/license"
)

// ValidationMetrics holds the business metrics of the validation endpoint.
// Exported through the OTel meter, which the app wires to the Prometheus
// exporter.
type ValidationMetrics struct {
	validations metric.Int64Counter
	binds       metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewValidationMetrics registers the validation instruments on the meter.
func NewValidationMetrics(meter metric.Meter) (*ValidationMetrics, error) {
	validations, err := meter.Int64Counter(
		"license_validations_total",
		metric.WithDescription("Validation calls by outcome code"),
	)
	if err != nil {
		return nil, err
	}
	binds, err := meter.Int64Counter(
		"license_binds_total",
		metric.WithDescription("First-use bindings performed"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"license_validation_duration_seconds",
		metric.WithDescription("Validation call duration including the store transaction"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &ValidationMetrics{
		validations: validations,
		binds:       binds,
		duration:    duration,
	}, nil
}

// RecordValidation records one validation call. Safe on a nil receiver so
// metrics stay optional in tests.
func (m *ValidationMetrics) RecordValidation(ctx context.Context, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = license.CodeFor(err)
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.validations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, d.Seconds(), attrs)
}

// RecordBind records one first-use binding.
func (m *ValidationMetrics) RecordBind(ctx context.Context) {
	if m == nil {
		return
	}
	m.binds.Add(ctx, 1)
}
