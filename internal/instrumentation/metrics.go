package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys - using constants for consistency.
const (
	attrMethod    = "method"
	attrStatus    = "status"
	attrOperation = "operation"
	attrKind      = "kind"
)

// Metrics provides methods for recording observability metrics around
// the mail API request path. The zero value and a nil receiver are
// valid no-op recorders, so callers never need to guard their calls.
type Metrics struct {
	requestsTotal   metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestErrors   metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.requestsTotal, err = meter.Int64Counter(
		"outlook_client_requests_total",
		metric.WithDescription("Total number of mail API requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outlook_client_requests_total counter: %w", err)
	}

	m.requestDuration, err = meter.Float64Histogram(
		"outlook_client_request_duration_seconds",
		metric.WithDescription("Mail API request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outlook_client_request_duration_seconds histogram: %w", err)
	}

	m.requestErrors, err = meter.Int64Counter(
		"outlook_client_request_errors_total",
		metric.WithDescription("Total number of failed mail API requests by error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create outlook_client_request_errors_total counter: %w", err)
	}

	return m, nil
}

// RecordRequest records one mail API round trip with its operation,
// HTTP method, response status code (zero for transport failures) and
// duration.
func (m *Metrics) RecordRequest(ctx context.Context, operation, method string, statusCode int, duration time.Duration) {
	if m == nil || m.requestsTotal == nil || m.requestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrMethod, method),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordError records a failed request with its error kind (e.g.
// "resource not found", "network failure").
func (m *Metrics) RecordError(ctx context.Context, operation, kind string) {
	if m == nil || m.requestErrors == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrOperation, operation),
		attribute.String(attrKind, kind),
	}

	m.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
}
