package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture file contents. The numbers are chosen so that, at the default
// threshold of 0.1, CBA's Revenue peers are NAB and BHP while WBC and RIO
// stand alone. CBA is missing from the cash flow table.
const (
	FinancialDataCSV = "ticker,sector,Revenue,Net Margin\n" +
		"CBA,Banks,100,0.30\n" +
		"NAB,Banks,105,0.31\n" +
		"WBC,Banks,150,n/a\n" +
		"BHP,Mining,102,-0.31\n" +
		"RIO,Mining,400,0.05\n"

	BalanceSheetsCSV = "Ticker,Sector,Total Assets,Debt to Equity\n" +
		"CBA,Banks,\"1,000\",1.5\n" +
		"NAB,Banks,980,1.6\n" +
		"BHP,Mining,500,0.4\n"

	CashFlowCSV = "ticker,Operating Cash Flow\n" +
		"BHP,50\n" +
		"RIO,55\n"

	SectorMeansCSV = "sector,Revenue,Net Margin,Total Assets\n" +
		"Banks,118.33,0.305,990\n" +
		"Mining,251,,500\n"

	DefinitionsJSON = `{"metrics":[
		{"id":"revenue","name":"Revenue","definition":"Total income from sales."},
		{"id":"net_margin","name":"Net Margin","aliases":["Profit Margin"],"definition":"Net income divided by revenue."}
	]}`
)

// WriteFile writes content to dir/name and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// WriteDataDir creates a temporary data directory holding the default
// datasets, sector means and definitions, and returns its path.
func WriteDataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	WriteFile(t, dir, "financial_data.csv", FinancialDataCSV)
	WriteFile(t, dir, "balance_sheets.csv", BalanceSheetsCSV)
	WriteFile(t, dir, "cash_flow.csv", CashFlowCSV)
	WriteFile(t, dir, "sector_means.csv", SectorMeansCSV)
	WriteFile(t, dir, "definitions.json", DefinitionsJSON)
	return dir
}
