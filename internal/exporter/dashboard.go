package exporter

import (
	"fmt"
	"strings"

	"companylens/pkg/contracts/domain"
)

// DashboardHeaders are the columns of an exported dashboard report.
var DashboardHeaders = []string{
	"Dataset", "Metric", "Value", "Similar Companies", "Industry Average", "Definition",
}

// DashboardRecords flattens a dashboard into CSV records, one per metric row.
// Sections without the company produce a single "not found" record, or the
// section's load error, so the report still lists every dataset.
func DashboardRecords(d *domain.Dashboard) [][]string {
	var records [][]string
	for _, section := range d.Sections {
		if !section.Found {
			note := fmt.Sprintf("%s not found", d.Ticker)
			if section.Error != "" {
				note = section.Error
			}
			records = append(records, []string{section.Title, "", Placeholder, "", "", note})
			continue
		}
		for _, row := range section.Rows {
			records = append(records, []string{
				section.Title,
				row.Metric,
				row.Value,
				SimilarList(row.SimilarCompanies),
				row.IndustryAverage,
				row.Definition,
			})
		}
	}
	return records
}

// SimilarList joins peer tickers for display; an empty list renders as the
// placeholder.
func SimilarList(companies []string) string {
	if len(companies) == 0 {
		return Placeholder
	}
	return strings.Join(companies, ", ")
}

// WriteDashboard exports a dashboard as a CSV report with a UTF-8 BOM.
func (w *CSVWriter) WriteDashboard(filePath string, d *domain.Dashboard) (string, error) {
	return w.WriteCSV(filePath, WriteOptions{
		Headers:   DashboardHeaders,
		Records:   DashboardRecords(d),
		BOMPrefix: true,
	})
}

// DefaultReportName is the file name used when no output path is given.
func DefaultReportName(d *domain.Dashboard) string {
	return fmt.Sprintf("%s_dashboard_%s.csv", d.Ticker, d.GeneratedAt.Format("20060102"))
}
