// Package dataprocessing loads the tabular inputs of the dashboard: company
// metric tables, sector means and metric definitions.
//
// # Metric tables
//
// A metric table has a header row, a company column (default "ticker"), an
// optional sector column (default "sector") and any number of metric
// columns. Sources may be CSV or Excel workbooks:
//
//	table, err := dataprocessing.LoadMetricTable("data/cash_flow.csv", dataprocessing.ParseOptions{
//	    Name: "cash_flow",
//	})
//
// Cells that are empty or read as "nan", "n/a", "na", "-", "null" or "none"
// are absent, as is anything that does not parse as a finite number.
//
// # Sector means
//
// LoadSectorMeans reads one row per sector. The label is taken from the
// "sector" column, or the first column when none is named so.
//
// # Definitions
//
//	defs, err := dataprocessing.LoadDefinitions("definitions.json")
//	text := defs.Definition("Operating Cash Flow")
package dataprocessing
