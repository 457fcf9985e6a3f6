package dataprocessing

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"companylens/pkg/contracts/domain"
)

const (
	// DefaultCompanyColumn is the header of the company identifier column.
	DefaultCompanyColumn = "ticker"
	// DefaultSectorColumn is the header of the optional sector column.
	DefaultSectorColumn = "sector"
)

// absentTokens are cell contents treated as a missing value.
var absentTokens = map[string]struct{}{
	"": {}, "nan": {}, "n/a": {}, "na": {}, "-": {}, "null": {}, "none": {},
}

// ParseOptions configures how a tabular source becomes a MetricTable.
type ParseOptions struct {
	// Name is recorded on the table and selects the workbook sheet.
	Name string
	// CompanyColumn and SectorColumn are matched case-insensitively.
	CompanyColumn string
	SectorColumn  string
	Logger        *slog.Logger
}

func (o ParseOptions) withDefaults() ParseOptions {
	if o.CompanyColumn == "" {
		o.CompanyColumn = DefaultCompanyColumn
	}
	if o.SectorColumn == "" {
		o.SectorColumn = DefaultSectorColumn
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// ParseCell converts a raw cell into a Value. Thousands separators and a
// trailing percent sign are accepted ("12.5%" is 12.5). Anything that is
// not a finite number is absent.
func ParseCell(raw string) domain.Value {
	s := strings.TrimSpace(raw)
	if _, ok := absentTokens[strings.ToLower(s)]; ok {
		return domain.Absent()
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return domain.Absent()
	}
	return domain.Present(f)
}

// ParseMetricTable reads a CSV metric table with a header row.
func ParseMetricTable(r io.Reader, opts ParseOptions) (*domain.MetricTable, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return BuildMetricTable(records, opts)
}

// LoadMetricTable reads a .csv or .xlsx metric table from disk.
func LoadMetricTable(path string, opts ParseOptions) (*domain.MetricTable, error) {
	records, err := readRecords(path, opts.Name)
	if err != nil {
		return nil, err
	}
	table, err := BuildMetricTable(records, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// BuildMetricTable turns header plus data records into a MetricTable. Every
// column other than the company and sector columns is a metric. Rows with a
// blank company are skipped; for duplicated companies the first row wins.
func BuildMetricTable(records [][]string, opts ParseOptions) (*domain.MetricTable, error) {
	opts = opts.withDefaults()
	logger := opts.Logger.With(slog.String("dataset", opts.Name))

	if len(records) == 0 {
		return nil, ErrMissingHeader
	}

	header := records[0]
	companyCol, sectorCol := -1, -1
	type metricCol struct {
		name string
		pos  int
	}
	var metricCols []metricCol
	seen := make(map[string]bool)

	for i, h := range header {
		name := strings.TrimSpace(h)
		switch {
		case companyCol < 0 && strings.EqualFold(name, opts.CompanyColumn):
			companyCol = i
		case sectorCol < 0 && strings.EqualFold(name, opts.SectorColumn):
			sectorCol = i
		case name == "":
			logger.Debug("Skipping column without header", slog.Int("column", i))
		case seen[name]:
			logger.Warn("Skipping duplicate metric column", slog.String("metric", name), slog.Int("column", i))
		default:
			seen[name] = true
			metricCols = append(metricCols, metricCol{name: name, pos: i})
		}
	}
	if companyCol < 0 {
		return nil, fmt.Errorf("%w: %q", ErrCompanyColumnNotFound, opts.CompanyColumn)
	}

	metrics := make([]string, len(metricCols))
	for i, mc := range metricCols {
		metrics[i] = mc.name
	}

	cell := func(record []string, i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]domain.Row, 0, len(records)-1)
	companies := make(map[string]bool, len(records)-1)
	skipped := 0
	for line, record := range records[1:] {
		company := domain.NormalizeCompany(cell(record, companyCol))
		if company == "" {
			skipped++
			continue
		}
		if companies[company] {
			logger.Warn("Duplicate company row ignored",
				slog.String("company", company),
				slog.Int("line", line+2))
			continue
		}
		companies[company] = true

		values := make(map[string]domain.Value, len(metricCols))
		for _, mc := range metricCols {
			values[mc.name] = ParseCell(cell(record, mc.pos))
		}
		rows = append(rows, domain.Row{
			Company: company,
			Sector:  cell(record, sectorCol),
			Values:  values,
		})
	}

	table, err := domain.NewMetricTable(opts.Name, metrics, rows)
	if err != nil {
		return nil, err
	}

	logger.Debug("Metric table parsed",
		slog.Int("companies", table.Len()),
		slog.Int("metrics", len(metrics)),
		slog.Int("skipped_rows", skipped))
	return table, nil
}

// ParseSectorMeans reads a CSV of per-sector metric averages.
func ParseSectorMeans(r io.Reader) (domain.SectorAverages, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, err
	}
	return BuildSectorMeans(records)
}

// LoadSectorMeans reads a .csv or .xlsx sector means file from disk.
func LoadSectorMeans(path string) (domain.SectorAverages, error) {
	records, err := readRecords(path, "")
	if err != nil {
		return nil, err
	}
	means, err := BuildSectorMeans(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return means, nil
}

// BuildSectorMeans builds SectorAverages from records. The sector label is
// taken from the "sector" column, or from the first column when no column
// has that name. Absent cells are left out so the metric resolves as
// unavailable.
func BuildSectorMeans(records [][]string) (domain.SectorAverages, error) {
	if len(records) == 0 || len(records[0]) == 0 {
		return nil, ErrMissingHeader
	}

	header := records[0]
	sectorCol := 0
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), DefaultSectorColumn) {
			sectorCol = i
			break
		}
	}

	averages := make(domain.SectorAverages, len(records)-1)
	for _, record := range records[1:] {
		if sectorCol >= len(record) {
			continue
		}
		sector := strings.TrimSpace(record[sectorCol])
		if sector == "" {
			continue
		}
		if _, dup := averages[sector]; dup {
			continue
		}
		means := make(map[string]float64, len(header)-1)
		for i, h := range header {
			metric := strings.TrimSpace(h)
			if i == sectorCol || metric == "" || i >= len(record) {
				continue
			}
			if v, ok := ParseCell(record[i]).Get(); ok {
				means[metric] = v
			}
		}
		averages[sector] = means
	}
	return averages, nil
}
