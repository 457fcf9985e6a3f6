package domain

import "time"

// MetricRow is one line of a company dashboard section.
type MetricRow struct {
	Metric string `json:"metric"`
	// Value is the formatted display value, RawValue the number behind it.
	Value    string  `json:"value"`
	RawValue float64 `json:"raw_value"`
	// SimilarCompanies lists peers within the threshold, in table row order.
	SimilarCompanies []string       `json:"similar_companies"`
	IndustryAverage  string         `json:"industry_average"`
	Benchmark        BenchmarkValue `json:"benchmark"`
	Definition       string         `json:"definition"`
}

// DashboardSection holds the rows derived from one dataset. Error is set,
// and Found false, when the dataset could not be loaded.
type DashboardSection struct {
	Dataset string      `json:"dataset"`
	Title   string      `json:"title"`
	Found   bool        `json:"found"`
	Error   string      `json:"error,omitempty"`
	Rows    []MetricRow `json:"rows"`
}

// Dashboard is the full per-company view across every configured dataset.
type Dashboard struct {
	Ticker      string             `json:"ticker"`
	Sector      string             `json:"sector,omitempty"`
	Threshold   float64            `json:"threshold"`
	SignAware   bool               `json:"sign_aware"`
	Sections    []DashboardSection `json:"sections"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// Found reports whether any section contains the company.
func (d *Dashboard) Found() bool {
	for _, s := range d.Sections {
		if s.Found {
			return true
		}
	}
	return false
}

// DatasetSummary describes a loaded dataset.
type DatasetSummary struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	File      string    `json:"file"`
	Companies int       `json:"companies"`
	Metrics   []string  `json:"metrics"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// MetricDefinition is the human readable description of a metric.
type MetricDefinition struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Aliases    []string `json:"aliases,omitempty"`
	Definition string   `json:"definition"`
}
