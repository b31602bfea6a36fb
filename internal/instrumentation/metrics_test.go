package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestProvider(t *testing.T, ctx context.Context) *Provider {
	t.Helper()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "test-service",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: "prometheus",
		TracingExporter: "none",
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	return provider
}

func TestMetrics_RecordRequest(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider := newTestProvider(t, ctx)

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil")
	}

	// Should not panic
	metrics.RecordRequest(ctx, "messages.get", "GET", 200, 100*time.Millisecond)
	metrics.RecordRequest(ctx, "messages.send", "POST", 500, 50*time.Millisecond)
	metrics.RecordRequest(ctx, "folders.all", "GET", 0, 10*time.Millisecond)
}

func TestMetrics_RecordError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider := newTestProvider(t, ctx)
	metrics := provider.Metrics()

	// Should not panic
	metrics.RecordError(ctx, "messages.get", "resource not found")
	metrics.RecordError(ctx, "messages.send", "network failure")
}

// Recording through a manual reader pins down the exported instrument
// names and the request attributes.
func TestMetrics_Instruments(t *testing.T) {
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = meterProvider.Shutdown(ctx) })

	metrics, err := NewMetrics(meterProvider.Meter("outlookmail"))
	require.NoError(t, err)

	metrics.RecordRequest(ctx, "messages.get", "GET", 200, 120*time.Millisecond)
	metrics.RecordError(ctx, "messages.get", "resource not found")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := make(map[string]metricdata.Metrics)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	requests, ok := byName["outlook_client_requests_total"]
	require.True(t, ok, "request counter not exported")
	sum, ok := requests.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(1), sum.DataPoints[0].Value)
	operation, ok := sum.DataPoints[0].Attributes.Value(attribute.Key("operation"))
	require.True(t, ok)
	assert.Equal(t, "messages.get", operation.AsString())

	duration, ok := byName["outlook_client_request_duration_seconds"]
	require.True(t, ok, "duration histogram not exported")
	hist, ok := duration.Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.InDelta(t, 0.12, hist.DataPoints[0].Sum, 1e-9)

	errorsMetric, ok := byName["outlook_client_request_errors_total"]
	require.True(t, ok, "error counter not exported")
	errSum, ok := errorsMetric.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errSum.DataPoints, 1)
	kind, ok := errSum.DataPoints[0].Attributes.Value(attribute.Key("kind"))
	require.True(t, ok)
	assert.Equal(t, "resource not found", kind.AsString())
}

func TestMetrics_NoOp_WhenDisabled(t *testing.T) {
	ctx := context.Background()

	provider, err := NewProvider(ctx, Config{
		ServiceName: "test-service",
		Enabled:     false,
	})
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}

	metrics := provider.Metrics()
	if metrics == nil {
		t.Fatal("expected metrics to be non-nil even when disabled")
	}

	// All recording methods should be safe no-ops
	metrics.RecordRequest(ctx, "messages.get", "GET", 200, time.Millisecond)
	metrics.RecordError(ctx, "messages.get", "server failure")
}

func TestMetrics_NilReceiver(t *testing.T) {
	ctx := context.Background()

	var metrics *Metrics

	// A nil receiver must be a safe no-op recorder
	metrics.RecordRequest(ctx, "messages.get", "GET", 200, time.Millisecond)
	metrics.RecordError(ctx, "messages.get", "server failure")
}
