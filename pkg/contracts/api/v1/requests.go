// Package api contains API contract definitions for the company dashboard.
// Version v1 represents the current stable API version.
package api

// Query and path parameters are bound with the `query` and `param` tags.
// Optional numeric parameters are pointers so that an omitted value can fall
// back to the configured default.

// SimilarityRequest represents a request for a dataset's similarity index
type SimilarityRequest struct {
	Dataset   string   `json:"dataset" param:"dataset" validate:"required,dataset"`
	Threshold *float64 `json:"threshold,omitempty" query:"threshold" validate:"omitempty,gte=0,lte=10"`
	SignAware *bool    `json:"sign_aware,omitempty" query:"sign_aware"`
}

// DashboardRequest represents a request for a company dashboard
type DashboardRequest struct {
	Ticker    string   `json:"ticker" param:"ticker" validate:"required,ticker"`
	Threshold *float64 `json:"threshold,omitempty" query:"threshold" validate:"omitempty,gte=0,lte=10"`
	SignAware *bool    `json:"sign_aware,omitempty" query:"sign_aware"`
}

// BenchmarkRequest represents a request for a company's sector benchmark
type BenchmarkRequest struct {
	Ticker string `json:"ticker" param:"ticker" validate:"required,ticker"`
}

// DefinitionRequest represents a request for a metric definition
type DefinitionRequest struct {
	Metric string `json:"metric" param:"metric" validate:"required,max=128"`
}

// HealthCheckRequest represents a health check request
type HealthCheckRequest struct {
	Verbose bool `json:"verbose" query:"verbose"`
}
