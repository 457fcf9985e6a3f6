package domain

import (
	"fmt"
	"strings"
)

// Row is one company's line in a MetricTable.
type Row struct {
	// Company is the case-normalized company identifier (e.g. "CBA").
	Company string `json:"company" validate:"required"`
	// Sector is the optional industry classification label.
	Sector string `json:"sector,omitempty"`
	// Values maps metric name to the company's value for that metric.
	// A metric missing from the map is treated as absent.
	Values map[string]Value `json:"values"`
}

// Value returns the row's value for metric, absent when not recorded.
func (r Row) Value(metric string) Value {
	if r.Values == nil {
		return Absent()
	}
	return r.Values[metric]
}

// MetricTable is an ordered set of company rows sharing the same metric
// columns. Tables are treated as read-only once constructed.
type MetricTable struct {
	// Name identifies the dataset the table was loaded from (e.g. "cash_flow").
	Name    string   `json:"name,omitempty"`
	Metrics []string `json:"metrics"`
	Rows    []Row    `json:"rows"`

	index map[string]int
}

// NormalizeCompany trims and upper-cases a company identifier.
func NormalizeCompany(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// NewMetricTable builds a table from metric column labels and rows.
// Company identifiers are normalized; duplicate companies, blank
// identifiers and duplicate metric names are rejected.
func NewMetricTable(name string, metrics []string, rows []Row) (*MetricTable, error) {
	seenMetric := make(map[string]struct{}, len(metrics))
	for _, m := range metrics {
		if strings.TrimSpace(m) == "" {
			return nil, &ValidationError{Field: "metrics", Message: "metric name must not be blank"}
		}
		if _, dup := seenMetric[m]; dup {
			return nil, &ValidationError{Field: "metrics", Message: fmt.Sprintf("duplicate metric %q", m), Value: m}
		}
		seenMetric[m] = struct{}{}
	}

	t := &MetricTable{
		Name:    name,
		Metrics: append([]string(nil), metrics...),
		Rows:    make([]Row, 0, len(rows)),
		index:   make(map[string]int, len(rows)),
	}
	for i, r := range rows {
		id := NormalizeCompany(r.Company)
		if id == "" {
			return nil, &ValidationError{Field: "company", Message: fmt.Sprintf("row %d has a blank company identifier", i), Value: i}
		}
		if _, dup := t.index[id]; dup {
			return nil, &ValidationError{Field: "company", Message: fmt.Sprintf("duplicate company %q", id), Value: id}
		}
		values := make(map[string]Value, len(metrics))
		for _, m := range metrics {
			values[m] = r.Value(m)
		}
		t.index[id] = len(t.Rows)
		t.Rows = append(t.Rows, Row{
			Company: id,
			Sector:  strings.TrimSpace(r.Sector),
			Values:  values,
		})
	}
	return t, nil
}

// Len returns the number of rows.
func (t *MetricTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Row looks up a company's row using a normalized identifier.
func (t *MetricTable) Row(company string) (Row, bool) {
	if t == nil {
		return Row{}, false
	}
	id := NormalizeCompany(company)
	if t.index == nil {
		for _, r := range t.Rows {
			if r.Company == id {
				return r, true
			}
		}
		return Row{}, false
	}
	i, ok := t.index[id]
	if !ok {
		return Row{}, false
	}
	return t.Rows[i], true
}

// HasCompany reports whether the table contains company.
func (t *MetricTable) HasCompany(company string) bool {
	_, ok := t.Row(company)
	return ok
}

// HasMetric reports whether metric is one of the table's columns.
func (t *MetricTable) HasMetric(metric string) bool {
	if t == nil {
		return false
	}
	for _, m := range t.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// Companies returns company identifiers in row order.
func (t *MetricTable) Companies() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Company
	}
	return out
}
