package http

import (
	"context"

	"companylens/internal/services"
	api "companylens/pkg/contracts/api/v1"
	"companylens/pkg/contracts/domain"
)

// DashboardServiceInterface defines the analytics operations served over HTTP
type DashboardServiceInterface interface {
	CompanyDashboard(ctx context.Context, ticker string, opts services.QueryOptions) (*domain.Dashboard, error)
	Similarity(ctx context.Context, dataset string, opts services.QueryOptions) (*api.SimilarityResponse, error)
	Benchmark(ctx context.Context, ticker string) (*api.BenchmarkResponse, error)
	Datasets(ctx context.Context) ([]domain.DatasetSummary, error)
	Definition(ctx context.Context, metric string) (domain.MetricDefinition, bool, error)
}

// HealthServiceInterface defines the health probes served over HTTP
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
