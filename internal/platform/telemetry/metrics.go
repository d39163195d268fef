package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/carepoint/hms"

// Metrics holds the service's instruments. A nil *Metrics records nothing, so
// services built in tests need no meter.
type Metrics struct {
	HTTPRequestsTotal metric.Int64Counter
	HTTPDurationMs    metric.Float64Histogram

	DispensesTotal       metric.Int64Counter
	DispenseFailures     metric.Int64Counter
	DispensedUnits       metric.Int64Counter
	DischargesTotal      metric.Int64Counter
	DischargeBilledTotal metric.Float64Counter
	PaymentsTotal        metric.Int64Counter
}

// NewMetrics creates instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsFromMeter(otel.Meter(instrumentationName))
}

func NewMetricsFromMeter(meter metric.Meter) (*Metrics, error) {
	var (
		m    Metrics
		err  error
		errs []error
	)

	m.HTTPRequestsTotal, err = meter.Int64Counter("http_server_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"))
	errs = append(errs, err)

	m.HTTPDurationMs, err = meter.Float64Histogram("http_server_duration_milliseconds",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"))
	errs = append(errs, err)

	m.DispensesTotal, err = meter.Int64Counter("pharmacy_dispenses_total",
		metric.WithDescription("Prescriptions dispensed"),
		metric.WithUnit("{prescription}"))
	errs = append(errs, err)

	m.DispenseFailures, err = meter.Int64Counter("pharmacy_dispense_failures_total",
		metric.WithDescription("Dispense attempts rejected, by reason"),
		metric.WithUnit("{attempt}"))
	errs = append(errs, err)

	m.DispensedUnits, err = meter.Int64Counter("pharmacy_dispensed_units_total",
		metric.WithDescription("Medicine units removed from stock"),
		metric.WithUnit("{unit}"))
	errs = append(errs, err)

	m.DischargesTotal, err = meter.Int64Counter("patient_discharges_total",
		metric.WithDescription("Patients discharged"),
		metric.WithUnit("{patient}"))
	errs = append(errs, err)

	m.DischargeBilledTotal, err = meter.Float64Counter("discharge_billed_amount_total",
		metric.WithDescription("Amount billed at discharge"),
		metric.WithUnit("{currency}"))
	errs = append(errs, err)

	m.PaymentsTotal, err = meter.Int64Counter("bill_payments_total",
		metric.WithDescription("Payments applied to bills, by resulting status"),
		metric.WithUnit("{payment}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("creating instruments: %w", err)
	}
	return &m, nil
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, durationMs float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http_method", method),
		attribute.String("http_route", route),
		attribute.Int("http_status_code", statusCode),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPDurationMs.Record(ctx, durationMs, attrs)
}

// RecordDispense counts a successful dispense and the units it removed.
func (m *Metrics) RecordDispense(ctx context.Context, pharmacyNo string, units int64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("pharmacy", pharmacyNo))
	m.DispensesTotal.Add(ctx, 1, attrs)
	m.DispensedUnits.Add(ctx, units, attrs)
}

func (m *Metrics) RecordDispenseFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.DispenseFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *Metrics) RecordDischarge(ctx context.Context, total float64) {
	if m == nil {
		return
	}
	m.DischargesTotal.Add(ctx, 1)
	m.DischargeBilledTotal.Add(ctx, total)
}

func (m *Metrics) RecordPayment(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.PaymentsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}
