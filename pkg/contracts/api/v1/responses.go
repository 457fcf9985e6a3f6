package api

import (
	"companylens/pkg/contracts/domain"
)

// SimilarityResponse carries the similarity index of one dataset
type SimilarityResponse struct {
	Dataset   string                 `json:"dataset"`
	Threshold float64                `json:"threshold"`
	SignAware bool                   `json:"sign_aware"`
	Companies int                    `json:"companies"`
	Index     domain.SimilarityIndex `json:"index"`
}

// BenchmarkResponse carries a company's sector benchmark over every metric
type BenchmarkResponse struct {
	Ticker     string                 `json:"ticker"`
	Sector     string                 `json:"sector,omitempty"`
	Benchmarks domain.BenchmarkResult `json:"benchmarks"`
}

// DatasetsResponse lists the configured datasets
type DatasetsResponse struct {
	Datasets []domain.DatasetSummary `json:"datasets"`
}

// DefinitionResponse carries a metric definition. Found is false when the
// metric has no entry and Definition holds the placeholder text.
type DefinitionResponse struct {
	Metric     string                  `json:"metric"`
	Found      bool                    `json:"found"`
	Definition domain.MetricDefinition `json:"definition"`
}
