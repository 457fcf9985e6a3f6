// Package exporter renders dashboard values for display and writes
// dashboard reports to CSV.
//
// FormatValue is the single display formatter. Integral numbers are shown
// without a fraction and with thousands separators, other numbers with
// exactly two decimals:
//
//	exporter.FormatValue(1000.0)            // "1,000"
//	exporter.FormatValue(1234.5)            // "1,234.50"
//	exporter.FormatValue("n/a")             // "n/a"
//	exporter.FormatValue(domain.Absent())   // "N/A"
//
// CSVWriter places relative paths in the reports directory and can prefix
// files with a UTF-8 BOM so spreadsheet tools detect the encoding:
//
//	w := exporter.NewCSVWriter(paths, logger)
//	path, err := w.WriteDashboard(exporter.DefaultReportName(d), d)
package exporter
