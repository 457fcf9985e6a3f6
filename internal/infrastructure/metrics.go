package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// AnalyticsMetrics holds the instruments recorded by the dashboard.
type AnalyticsMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Analytics metrics
	SimilarityComputations metric.Int64Counter
	SimilarityDuration     metric.Float64Histogram
	BenchmarkLookups       metric.Int64Counter
	DatasetLoads           metric.Int64Counter
}

// CreateAnalyticsMetrics creates the application instruments on meter.
func CreateAnalyticsMetrics(meter metric.Meter) (*AnalyticsMetrics, error) {
	httpRequestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpRequestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	httpActiveRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	similarityComputations, err := meter.Int64Counter(
		"similarity_computations_total",
		metric.WithDescription("Total number of similarity index computations"),
	)
	if err != nil {
		return nil, err
	}

	similarityDuration, err := meter.Float64Histogram(
		"similarity_duration_seconds",
		metric.WithDescription("Similarity index computation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	benchmarkLookups, err := meter.Int64Counter(
		"benchmark_lookups_total",
		metric.WithDescription("Total number of per-metric sector benchmark lookups"),
	)
	if err != nil {
		return nil, err
	}

	datasetLoads, err := meter.Int64Counter(
		"dataset_loads_total",
		metric.WithDescription("Total number of dataset loads by result"),
	)
	if err != nil {
		return nil, err
	}

	return &AnalyticsMetrics{
		HTTPRequestsTotal:      httpRequestsTotal,
		HTTPRequestDuration:    httpRequestDuration,
		HTTPActiveRequests:     httpActiveRequests,
		SimilarityComputations: similarityComputations,
		SimilarityDuration:     similarityDuration,
		BenchmarkLookups:       benchmarkLookups,
		DatasetLoads:           datasetLoads,
	}, nil
}

// NoopAnalyticsMetrics returns instruments that record nothing.
func NoopAnalyticsMetrics() *AnalyticsMetrics {
	m, _ := CreateAnalyticsMetrics(noop.NewMeterProvider().Meter(MeterName))
	return m
}

// RecordSimilarity records one similarity computation.
func (m *AnalyticsMetrics) RecordSimilarity(ctx context.Context, dataset, strategy string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("dataset", dataset),
		attribute.String("strategy", strategy),
		attribute.String("status", status),
	)
	m.SimilarityComputations.Add(ctx, 1, attrs)
	m.SimilarityDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordBenchmark records available and unavailable benchmark lookups.
func (m *AnalyticsMetrics) RecordBenchmark(ctx context.Context, available, unavailable int) {
	if m == nil {
		return
	}
	if available > 0 {
		m.BenchmarkLookups.Add(ctx, int64(available), metric.WithAttributes(attribute.Bool("available", true)))
	}
	if unavailable > 0 {
		m.BenchmarkLookups.Add(ctx, int64(unavailable), metric.WithAttributes(attribute.Bool("available", false)))
	}
}

// RecordDatasetLoad records a dataset load. result is "hit", "loaded" or "error".
func (m *AnalyticsMetrics) RecordDatasetLoad(ctx context.Context, dataset, result string) {
	if m == nil {
		return
	}
	m.DatasetLoads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("dataset", dataset),
		attribute.String("result", result),
	))
}

// RecordHTTPRequest records a finished HTTP request.
func (m *AnalyticsMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
